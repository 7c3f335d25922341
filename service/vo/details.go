package vo

// Details is the payload of a resolved resource. The set of implementations
// is closed to this package.
type Details interface {
	ContentType() ContentType
	details()
}

type HTMLDetails struct {
	HTML string `json:"html"`
}

type LinkDetails struct {
	Href string `json:"href"`
	Text string `json:"text,omitempty"`
}

type VideoDetails struct {
	VideoID string `json:"youtube"`
}

type CustomParameter struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ExternalToolDetails describes an LTI launch.
type ExternalToolDetails struct {
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	LaunchURL        string            `json:"launch_url"`
	Height           string            `json:"height"`
	Width            string            `json:"width"`
	CustomParameters []CustomParameter `json:"custom_parameters"`
}

// AssessmentDetails is handed to the assessment converter untouched.
type AssessmentDetails struct {
	Data map[string]interface{} `json:"data"`
}

type DiscussionDetails struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

func (HTMLDetails) ContentType() ContentType         { return ContentTypeHTML }
func (LinkDetails) ContentType() ContentType         { return ContentTypeLink }
func (VideoDetails) ContentType() ContentType        { return ContentTypeVideo }
func (ExternalToolDetails) ContentType() ContentType { return ContentTypeExternalTool }
func (AssessmentDetails) ContentType() ContentType   { return ContentTypeAssessment }
func (DiscussionDetails) ContentType() ContentType   { return ContentTypeDiscussion }

func (HTMLDetails) details()         {}
func (LinkDetails) details()         {}
func (VideoDetails) details()        {}
func (ExternalToolDetails) details() {}
func (AssessmentDetails) details()   {}
func (DiscussionDetails) details()   {}
