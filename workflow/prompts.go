package workflow

const extractSystem = `You are an expert at analyzing user requests for educational content creation.
Extract the required information from the user's prompt.

For the ` + "`content_requests`" + ` field, you MUST choose one or more values from the following exact list:
'{{join .categories "', '"}}'

Do not use similar words or variations. For example, if the user asks for '연습 문제' or '퀴즈', you must map it to '문제 생성'. If they ask for '학습 목표'
you must map it to '학습 목표 생성'.`

const extractUser = "다음 사용자 프롬프트에서 핵심 요구사항을 추출해줘:\n'{{.prompt}}'"

const learningGoalsUser = `{{.school_level}} {{.grade}} {{.subject}} 과목의 '{{.domain}}' 단원에 대한 학습 목표를 생성해줘.
참고 자료:
{{range .docs}}- {{.Basecode}} {{.Content}}
{{end}}`

const problemsUser = `{{.school_level}} {{.grade}} {{.subject}} 과목의 '{{.domain}}' 단원에 대한 이해를 확인할 수 있는 문제를 상,중,하 수준의 문제들을 각각 1개씩 생성해줘.
참고 자료:
{{range .docs}}- {{.Basecode}} {{.Content}}
{{end}}`

const (
	errorHeader       = "오류가 발생했습니다.\n"
	responseHeader    = "요청하신 **%s %s %s - '%s'** 단원에 대한 콘텐츠입니다.\n"
	goalsSection      = "### 학습 목표\n"
	problemsSection   = "\n### 연습 문제\n"
	noDocumentsReason = "관련 성취기준 문서를 찾지 못했습니다 (검색 %d회)"
)

// errorLabels names each failure envelope in the aggregated error message, in output order.
var errorLabels = []struct {
	key   string
	label string
}{
	{KeyRequirementsState, "요구사항 추출 오류"},
	{KeyRetrievalState, "문서 검색 오류"},
	{KeyGradeState, "관련성 평가 오류"},
	{KeyProblemState, "문제 생성 오류"},
	{KeyGoalState, "학습 목표 생성 오류"},
}
