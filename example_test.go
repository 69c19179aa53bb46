package reqflow_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/adamwoolhether/reqflow"
	"github.com/adamwoolhether/reqflow/client"
)

func ExampleNewClient() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"msg":"hello"}`)
	}))
	defer ts.Close()

	c, err := reqflow.NewClient(ts.URL, client.WithTimeout(5*time.Second))
	if err != nil {
		fmt.Println("build error:", err)
		return
	}
	defer c.Close()

	done := make(chan struct{})
	c.Get(context.Background(), "/", nil, func(v any, err error) {
		defer close(done)
		if err != nil {
			fmt.Println("get error:", err)
			return
		}
		fmt.Println(v.(map[string]any)["msg"])
	})
	<-done

	// Output: hello
}
