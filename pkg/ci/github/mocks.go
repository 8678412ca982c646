package github

import (
	"fmt"
	"strconv"

	"github.com/slipwayhq/slipway/pkg/ci"
)

type MockCiService struct {
	PublishedComments []string
	EditedComments    map[string]string
	CommitStatuses    map[string]string

	comments []*ci.Comment
}

func NewMockCiService() *MockCiService {
	return &MockCiService{
		EditedComments: map[string]string{},
		CommitStatuses: map[string]string{},
	}
}

func (svc *MockCiService) PublishComment(prNumber int, comment string) (*ci.Comment, error) {
	svc.PublishedComments = append(svc.PublishedComments, comment)
	body := comment
	published := &ci.Comment{Id: strconv.Itoa(len(svc.comments) + 1), Body: &body}
	svc.comments = append(svc.comments, published)
	return published, nil
}

func (svc *MockCiService) GetComments(prNumber int) ([]ci.Comment, error) {
	comments := make([]ci.Comment, 0, len(svc.comments))
	for _, comment := range svc.comments {
		comments = append(comments, *comment)
	}
	return comments, nil
}

func (svc *MockCiService) EditComment(prNumber int, id string, comment string) error {
	for _, existing := range svc.comments {
		if existing.Id == id {
			*existing.Body = comment
			svc.EditedComments[id] = comment
			return nil
		}
	}
	return fmt.Errorf("comment %v not found", id)
}

func (svc *MockCiService) SetStatus(prNumber int, status string, statusContext string) error {
	svc.CommitStatuses[statusContext] = status
	return nil
}
