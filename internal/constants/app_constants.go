package constants

const (
	// Application-level constants
	AppName = "talentscout-go"

	// CandidateStatusSubmitted 记录创建即终态，不存在更新路径
	CandidateStatusSubmitted = "submitted"

	// CandidatesTable Supabase 候选人集合名
	CandidatesTable = "candidates"

	// DefaultCandidatesFile 本地回退文件的默认相对路径
	DefaultCandidatesFile = "data/candidates.json"
)
