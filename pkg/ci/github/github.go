package github

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/go-github/v61/github"
	"github.com/slipwayhq/slipway/pkg/ci"
)

type ServiceProvider interface {
	NewService(ghToken string, repoName string, owner string) (GithubService, error)
}

type ServiceProviderBasic struct{}

func (_ ServiceProviderBasic) NewService(ghToken string, repoName string, owner string) (GithubService, error) {
	client := github.NewClient(nil)
	if ghToken != "" {
		client = client.WithAuthToken(ghToken)
	}

	return GithubService{
		Client:   client,
		RepoName: repoName,
		Owner:    owner,
	}, nil
}

type GithubService struct {
	Client   *github.Client
	RepoName string
	Owner    string
}

func (svc GithubService) PublishComment(prNumber int, comment string) (*ci.Comment, error) {
	githubComment, _, err := svc.Client.Issues.CreateComment(context.Background(), svc.Owner, svc.RepoName, prNumber, &github.IssueComment{Body: &comment})
	if err != nil {
		return nil, fmt.Errorf("error publishing comment: %v", err)
	}
	return &ci.Comment{
		Id:   strconv.FormatInt(*githubComment.ID, 10),
		Body: githubComment.Body,
		Url:  *githubComment.HTMLURL,
	}, nil
}

func (svc GithubService) GetComments(prNumber int) ([]ci.Comment, error) {
	comments := []ci.Comment{}
	opts := github.IssueListCommentsOptions{ListOptions: github.ListOptions{PerPage: 100}}
	for {
		batch, resp, err := svc.Client.Issues.ListComments(context.Background(), svc.Owner, svc.RepoName, prNumber, &opts)
		if err != nil {
			return comments, fmt.Errorf("error getting pull request comments: %v", err)
		}
		for _, comment := range batch {
			comments = append(comments, ci.Comment{
				Id:   strconv.FormatInt(*comment.ID, 10),
				Body: comment.Body,
				Url:  *comment.HTMLURL,
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return comments, nil
}

func (svc GithubService) EditComment(prNumber int, id string, comment string) error {
	commentId, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return fmt.Errorf("could not convert comment id %v to int64: %v", id, err)
	}
	_, _, err = svc.Client.Issues.EditComment(context.Background(), svc.Owner, svc.RepoName, commentId, &github.IssueComment{Body: &comment})
	return err
}

func (svc GithubService) SetStatus(prNumber int, status string, statusContext string) error {
	pr, _, err := svc.Client.PullRequests.Get(context.Background(), svc.Owner, svc.RepoName, prNumber)
	if err != nil {
		slog.Error("error getting pull request", "prNumber", prNumber, "error", err)
		return fmt.Errorf("error getting pull request: %v", err)
	}

	_, _, err = svc.Client.Repositories.CreateStatus(context.Background(), svc.Owner, svc.RepoName, *pr.Head.SHA, &github.RepoStatus{
		State:       &status,
		Context:     &statusContext,
		Description: &statusContext,
	})
	return err
}
