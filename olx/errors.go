package olx

import (
	"errors"
	"fmt"

	"github.com/foomo/olxexport/service/vo"
)

// ErrNoAssessmentConverter is returned when an assessment leaf is met and no
// AssessmentConverter was configured.
var ErrNoAssessmentConverter = errors.New("no assessment converter configured")

// UnsupportedContentTypeError aborts a conversion on a content type the
// synthesizer has no node for.
type UnsupportedContentTypeError struct {
	Type vo.ContentType
}

func (e *UnsupportedContentTypeError) Error() string {
	return fmt.Sprintf("content type %q is not supported", string(e.Type))
}
