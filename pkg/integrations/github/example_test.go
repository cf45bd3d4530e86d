package github_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/matzehuels/octowire/pkg/errors"
	"github.com/matzehuels/octowire/pkg/integrations/github"
)

func ExampleClient_Dispatch() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"full_name":"octocat/hello-world","stargazers_count":80}`))
	}))
	defer server.Close()

	client := github.New(github.WithBaseURL(server.URL), github.WithClientName("example"))
	defer client.Close(context.Background())

	resp, err := client.Dispatch(context.Background(), "/repos/octocat/hello-world", nil)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	data := resp.Data.(map[string]any)
	fmt.Println(resp.Status, data["full_name"])
	// Output: 200 octocat/hello-world
}

func ExampleClassify() {
	err := github.Classify(http.StatusForbidden, "/users/octocat", map[string]any{
		"message": "API rate limit exceeded for 203.0.113.7.",
	})
	fmt.Println(errors.GetCode(err))

	err = github.Classify(http.StatusOK, "/graphql", map[string]any{
		"errors": []any{map[string]any{"message": "Something went wrong"}},
	})
	fmt.Println(errors.GetCode(err), errors.UserMessage(err))
	// Output:
	// RATE_LIMITED
	// GRAPHQL_ERROR Something went wrong
}

func ExampleResponse_PageNumber() {
	h := http.Header{}
	h.Set("Link", `<https://api.github.com/user/repos?page=3>; rel="next", `+
		`<https://api.github.com/user/repos?page=1>; rel="prev", `+
		`<https://api.github.com/user/repos?page=5>; rel="last"`)
	resp := &github.Response{Status: 200, Header: h}

	next, _ := resp.NextPageNumber()
	last, _ := resp.LastPageNumber()
	fmt.Println(resp.PageNumber(), next, last, resp.IsLastPage())
	// Output: 2 3 5 false
}

func ExampleParseTarget() {
	for _, s := range []string{"octocat/hello-world", "user:octocat", "org:github"} {
		t, _ := github.ParseTarget(s)
		fmt.Println(t.Space, t.Name)
	}
	// Output:
	// repos octocat/hello-world
	// users octocat
	// orgs github
}
