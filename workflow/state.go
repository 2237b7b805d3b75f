package workflow

import (
	"slices"

	"github.com/go-playground/validator/v10"
)

// State keys.
const (
	KeyPrompt            = "prompt"
	KeyMetadata          = "metadata"
	KeyRequirements      = "requirements"
	KeyRetrievedDocs     = "retrieved_docs"
	KeyRetrievalAttempts = "retrieval_attempts"
	KeyBinaryScore       = "binary_score"
	KeyFinalResponse     = "final_response"

	// Failure envelopes of the sequential nodes.
	KeyRequirementsState = "requirements_state"
	KeyRetrievalState    = "retrieval_state"
	KeyGradeState        = "grade_state"

	// Sub-states owned by the parallel generation branches.
	KeyGoalState    = "goal_state"
	KeyProblemState = "problem_state"
)

// Node names.
const (
	NodeExtractRequirements = "extract_requirements"
	NodeRetrieve            = "retrieve_from_vectordb"
	NodeGrade               = "evaluation_grade"
	NodeLearningGoals       = "generate_learning_goals"
	NodeProblems            = "generate_problems"
	NodeConsolidate         = "consolidate_response"
	NodeErrorHandler        = "error_handler"
)

// ContentRequest is a kind of content the user can ask for.
type ContentRequest string

const (
	LearningGoals ContentRequest = "학습 목표 생성"
	Problems      ContentRequest = "문제 생성"
)

// ContentRequests lists every accepted category, in prompt order.
var ContentRequests = []ContentRequest{LearningGoals, Problems}

// Valid reports whether c is one of ContentRequests.
func (c ContentRequest) Valid() bool {
	return slices.Contains(ContentRequests, c)
}

// Requirements is what the extraction node reads out of the user prompt.
type Requirements struct {
	SchoolLevel     string           `json:"school_level" jsonschema:"학교급 (예: 초등학교, 중학교, 고등학교)" validate:"required"`
	Grade           string           `json:"grade" jsonschema:"학년 (예: 1학년, 2학년)"`
	Subject         string           `json:"subject" jsonschema:"과목 (예: 수학, 과학)" validate:"required"`
	ContentRequests []ContentRequest `json:"content_requests" jsonschema:"요청된 콘텐츠 유형 목록" validate:"dive,content_request"`
	Domain          string           `json:"domain" jsonschema:"핵심 학습 주제" validate:"required"`
	Basecode        string           `json:"basecode,omitempty" jsonschema:"성취기준 코드"`
}

// Wants reports whether the user asked for c.
func (r Requirements) Wants(c ContentRequest) bool {
	return slices.Contains(r.ContentRequests, c)
}

// Metadata is the retrieval query built from the requirements.
func (r Requirements) Metadata() string {
	return r.SchoolLevel + " " + r.Grade + " " + r.Subject + " " + r.Domain
}

// newValidator returns a validator that knows the content_request tag.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("content_request", func(fl validator.FieldLevel) bool {
		return ContentRequest(fl.Field().String()).Valid()
	})
	return v
}
