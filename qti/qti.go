package qti

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/foomo/olxexport/fragment"
	"github.com/foomo/olxexport/olx"
	"github.com/foomo/olxexport/service/vo"
	"go.uber.org/zap"
)

// unreadableHTML stands in for assessment data of an unexpected shape.
const unreadableHTML = "<p>MISSING CONTENT</p>"

const (
	TypeMultipleChoice   = "multiple_choice"
	TypeMultipleResponse = "multiple_response"
	TypeTrueFalse        = "true_false"
	TypeFillInBlank      = "fib"
)

// Assessment is the shape expected in vo.AssessmentDetails.Data.
type Assessment struct {
	Problems []Problem `json:"problems"`
}

type Problem struct {
	// Type accepts both "multiple_choice" and "cc.multiple_choice.v0".
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Choices     []Choice `json:"choices"`
	Answers     []string `json:"answers"`
}

type Choice struct {
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// Converter builds edX problem nodes from assessment data. Problems it has
// no response type for are kept as html.
type Converter struct {
	logger *zap.Logger
}

var _ olx.AssessmentConverter = (*Converter)(nil)

func NewConverter(logger *zap.Logger) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{logger: logger}
}

func (c *Converter) ConvertAssessment(details vo.AssessmentDetails) ([]*vo.MarkupNode, error) {
	assessment, err := decode(details.Data)
	if err != nil {
		c.logger.Warn("unreadable assessment data", zap.Error(err))
		return []*vo.MarkupNode{vo.NewRawNode("html", unreadableHTML)}, nil
	}

	nodes := make([]*vo.MarkupNode, 0, len(assessment.Problems))
	for _, p := range assessment.Problems {
		switch normalizeType(p.Type) {
		case TypeMultipleChoice, TypeTrueFalse:
			nodes = append(nodes, choiceProblem("multiplechoiceresponse", "choicegroup", p))
		case TypeMultipleResponse:
			nodes = append(nodes, choiceProblem("choiceresponse", "checkboxgroup", p))
		case TypeFillInBlank:
			if len(p.Answers) == 0 {
				nodes = append(nodes, vo.NewRawNode("html", p.Description))
				continue
			}
			nodes = append(nodes, stringProblem(p))
		default:
			c.logger.Debug("problem type kept as html", zap.String("type", p.Type))
			nodes = append(nodes, vo.NewRawNode("html", p.Description))
		}
	}
	return nodes, nil
}

func decode(data map[string]interface{}) (*Assessment, error) {
	assessment := &Assessment{}
	if data == nil {
		return assessment, nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(b, assessment); err != nil {
		return nil, err
	}
	return assessment, nil
}

func normalizeType(t string) string {
	return strings.TrimSuffix(strings.TrimPrefix(t, "cc."), ".v0")
}

func choiceProblem(responseTag, groupTag string, p Problem) *vo.MarkupNode {
	group := vo.NewNode(groupTag)
	if groupTag == "choicegroup" {
		group.SetAttr("type", "MultipleChoice")
	}
	for _, choice := range p.Choices {
		node := vo.NewRawNode("choice", plainText(choice.Text))
		node.SetAttr("correct", strconv.FormatBool(choice.Correct))
		group.AppendChild(node)
	}

	response := vo.NewNode(responseTag)
	response.AppendChild(vo.NewRawNode("p", plainText(p.Description)))
	response.AppendChild(group)

	problem := vo.NewNode("problem")
	problem.AppendChild(response)
	return problem
}

func stringProblem(p Problem) *vo.MarkupNode {
	response := vo.NewNode("stringresponse",
		vo.Attr{Name: "answer", Value: p.Answers[0]},
		vo.Attr{Name: "type", Value: "ci"},
	)
	response.AppendChild(vo.NewRawNode("p", plainText(p.Description)))
	for _, answer := range p.Answers[1:] {
		response.AppendChild(vo.NewNode("additional_answer", vo.Attr{Name: "answer", Value: answer}))
	}
	response.AppendChild(vo.NewNode("textline", vo.Attr{Name: "size", Value: "20"}))

	problem := vo.NewNode("problem")
	problem.AppendChild(response)
	return problem
}

// plainText strips markup; problem labels and choices carry text only
func plainText(s string) string {
	frag, err := fragment.Parse(s)
	if err != nil {
		return s
	}
	return frag.Text()
}

