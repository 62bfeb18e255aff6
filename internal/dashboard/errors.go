package dashboard

import (
	"errors"

	"github.com/soltixdb/modelviz/internal/dataset"
	"github.com/soltixdb/modelviz/internal/export"
	"github.com/soltixdb/modelviz/internal/plot"
)

// Panel error codes
const (
	CodeInvalidShape    = "invalid_shape"
	CodeEmptyData       = "empty_data"
	CodeNotFound        = "not_found"
	CodeUnsupportedKind = "unsupported_kind"
	CodeRenderFailed    = "render_failed"
	CodeMergeFailed     = "merge_failed"
	CodeInternal        = "internal"
)

// PanelError is the failure of a single panel, shown in place of its plot
type PanelError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`

	err error
}

func (e *PanelError) Error() string {
	return e.Message
}

// Unwrap returns the underlying error.
func (e *PanelError) Unwrap() error {
	return e.err
}

// NewPanelError classifies err. A nil err yields nil.
func NewPanelError(err error, details map[string]interface{}) *PanelError {
	if err == nil {
		return nil
	}
	var pe *PanelError
	if errors.As(err, &pe) {
		return pe
	}
	return &PanelError{
		Code:    ErrorCode(err),
		Message: err.Error(),
		Details: details,
		err:     err,
	}
}

// ErrorCode maps an error to its panel error code
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, dataset.ErrInvalidShape):
		return CodeInvalidShape
	case errors.Is(err, dataset.ErrEmptyData):
		return CodeEmptyData
	case errors.Is(err, dataset.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, plot.ErrUnsupportedPlotType):
		return CodeUnsupportedKind
	case errors.Is(err, export.ErrRender):
		return CodeRenderFailed
	case errors.Is(err, export.ErrMerge):
		return CodeMergeFailed
	default:
		return CodeInternal
	}
}
