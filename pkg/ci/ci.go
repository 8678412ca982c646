package ci

import "os"

type CIName string

const (
	None   = CIName("")
	GitHub = CIName("github")
)

func (ci CIName) String() string {
	return string(ci)
}

// DetectCI inspects the process environment to figure out which CI system
// the current run is executing under.
func DetectCI() CIName {

	notEmpty := func(key string) bool {
		return os.Getenv(key) != ""
	}

	if notEmpty("GITHUB_ACTIONS") {
		return GitHub
	}
	return None
}

// Event is the CI run metadata the stack resolution works from. It is
// constructed once from the CI context at process start and never mutated.
type Event struct {
	System        CIName
	EventAction   string
	SourceBranch  string
	TargetBranch  string
	CommitSHA     string
	IsPullRequest bool
	PRNumber      int
	Actor         string
	Repository    string
}

type PullRequestService interface {
	PublishComment(prNumber int, comment string) (*Comment, error)
	EditComment(prNumber int, id string, comment string) error
	GetComments(prNumber int) ([]Comment, error)
	// SetStatus sets the status of the head commit, status could be: "pending", "failure", "success"
	SetStatus(prNumber int, status string, statusContext string) error
}

type Comment struct {
	Id   string
	Body *string
	Url  string
}
