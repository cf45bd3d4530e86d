package integrations_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/matzehuels/octowire/pkg/integrations"
)

func ExampleClient_Send() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, "Keep it logically awesome.")
	}))
	defer server.Close()

	client := integrations.NewClient(integrations.WithRateLimit(10, 1))
	resp, err := client.Send(context.Background(), &integrations.Request{
		Method: http.MethodGet,
		URL:    server.URL + "/zen",
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(resp.StatusCode, string(resp.Body))
	// Output:
	// 200 Keep it logically awesome.
}

func ExampleTransportError() {
	err := &integrations.TransportError{
		Kind:    integrations.KindTimeout,
		URL:     "https://api.github.com/repos/octocat/hello-world/events",
		Timeout: 20 * time.Second,
	}
	fmt.Println(err)
	fmt.Println("retryable:", err.Retryable())
	// Output:
	// Timeout of 20 reached while waiting for https://api.github.com/repos/octocat/hello-world/events
	// retryable: true
}
