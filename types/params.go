package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

type Validater interface {
	Validate() map[string]string
}

type QueryParams struct {
	Filename string `form:"filename" json:"filename" validate:"required"`
	Query    string `form:"query" json:"query" validate:"required"`
}

type SummarizeParams struct {
	Filename string `form:"filename" json:"filename" validate:"required"`
}

func Validate(v Validater) map[string]string {
	return v.Validate()
}

func (params *QueryParams) Validate() map[string]string {
	return validateStruct(params)
}

func (params *SummarizeParams) Validate() map[string]string {
	return validateStruct(params)
}

func validateStruct(v any) map[string]string {
	validate := validator.New()
	if err := validate.Struct(v); err != nil {
		errs := err.(validator.ValidationErrors)
		errors := make(map[string]string)
		for _, e := range errs {
			errors[e.Field()] = fmt.Sprintf("failed on '%s' tag", e.Tag())
		}
		return errors
	}
	return nil
}

type UploadResponse struct {
	Filename         string `json:"filename"`
	PageEstimate     int    `json:"page_estimate"`
	ChunkCount       int    `json:"chunk_count"`
	Summary          string `json:"summary"`
	Classification   string `json:"classification"`
	ProcessingMethod string `json:"processing_method"`
}

type QueryResponse struct {
	Filename      string `json:"filename"`
	Query         string `json:"query"`
	Answer        string `json:"answer"`
	ContextChunks int    `json:"context_chunks"`
}

type SummarizeResponse struct {
	Filename         string `json:"filename"`
	Summary          string `json:"summary"`
	Classification   string `json:"classification"`
	ChunkCount       int    `json:"chunk_count"`
	ProcessingMethod string `json:"processing_method"`
}
