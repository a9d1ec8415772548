package serverutils

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"ai-bizops-be/pkg/errs"
)

func TestValidateRequest(t *testing.T) {
	type payload struct {
		Query string `json:"query" validate:"required"`
		Limit int    `json:"limit" validate:"min=0"`
	}

	err := ValidateRequest(payload{Query: "revenue last week", Limit: 5})
	assert.NoError(t, err)

	err = ValidateRequest(payload{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Query")
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", errs.New(errs.KindNotFound, "missing"), fiber.StatusNotFound},
		{"parse", errs.New(errs.KindParse, "bad input"), fiber.StatusBadRequest},
		{"data query", errs.New(errs.KindDataQuery, "only SELECT"), fiber.StatusBadRequest},
		{"provider", errs.New(errs.KindProvider, "upstream down"), fiber.StatusBadGateway},
		{"indexing", errs.New(errs.KindIndexing, "no content"), fiber.StatusUnprocessableEntity},
		{"plain", errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusForError(tt.err))
		})
	}
}

func TestSuccessResponseEnvelope(t *testing.T) {
	res := SuccessResponse("done", map[string]int{"count": 3})
	assert.True(t, res.Success)
	assert.Equal(t, fiber.StatusOK, res.Code)
	assert.Equal(t, "done", res.Message)

	errRes := ErrorResponse(404, "not here")
	assert.False(t, errRes.Success)
	assert.Equal(t, 404, errRes.Code)
}
