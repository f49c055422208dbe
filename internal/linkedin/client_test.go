package linkedin

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testClient(serverURL string) *Client {
	c := NewClient("test-token", 5*time.Second, 2*time.Second)
	c.baseURL = serverURL
	return c
}

func TestAuthorURN_UsesFirstReadableEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("missing bearer token on %s", r.URL.Path)
		}
		if r.URL.Path == "/people/~" {
			json.NewEncoder(w).Encode(map[string]string{"id": "abc123"})
			return
		}
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	c := testClient(server.URL)
	urn := c.AuthorURN(context.Background())
	if urn != "urn:li:person:abc123" {
		t.Errorf("urn = %q", urn)
	}

	// Second call must come from the cache, not another round trip.
	server.Close()
	if again := c.AuthorURN(context.Background()); again != urn {
		t.Errorf("cached urn = %q, want %q", again, urn)
	}
}

func TestAuthorURN_FallsBackToPlaceholder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	c := testClient(server.URL)
	if urn := c.AuthorURN(context.Background()); urn != placeholderPersonURN {
		t.Errorf("urn = %q, want placeholder", urn)
	}
}

func TestShareStrategy_SuccessOn201(t *testing.T) {
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/shares" {
			t.Errorf("path = %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &gotBody)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	s := &shareStrategy{client: testClient(server.URL)}
	result := s.Attempt(context.Background(), PostContent{Text: "hello world"})

	if !result.Succeeded {
		t.Fatalf("attempt failed: %+v", result)
	}
	if result.HTTPStatus != 201 {
		t.Errorf("status = %d", result.HTTPStatus)
	}
	if gotBody["comment"] != "hello world" {
		t.Errorf("payload comment = %v", gotBody["comment"])
	}
	vis, _ := gotBody["visibility"].(map[string]interface{})
	if vis["code"] != "anyone" {
		t.Errorf("payload visibility = %v", gotBody["visibility"])
	}
}

func TestShareStrategy_ReportsStatusAndDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"ACCESS_DENIED"}`))
	}))
	defer server.Close()

	s := &shareStrategy{client: testClient(server.URL)}
	result := s.Attempt(context.Background(), PostContent{Text: "hello"})

	if result.Succeeded {
		t.Fatalf("attempt reported success on 403")
	}
	if result.HTTPStatus != 403 {
		t.Errorf("status = %d", result.HTTPStatus)
	}
	if result.ErrorDetail == "" {
		t.Errorf("error detail missing")
	}
}

func TestUGCStrategy_SendsRestliHeaderAndAuthor(t *testing.T) {
	var gotHeader string
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/me", "/people/~", "/people/~:(id,firstName,lastName)":
			json.NewEncoder(w).Encode(map[string]string{"id": "xyz"})
		case "/ugcPosts":
			gotHeader = r.Header.Get("X-Restli-Protocol-Version")
			body, _ := io.ReadAll(r.Body)
			json.Unmarshal(body, &gotBody)
			w.WriteHeader(http.StatusCreated)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	s := &ugcStrategy{client: testClient(server.URL)}
	result := s.Attempt(context.Background(), PostContent{Text: "ugc text"})

	if !result.Succeeded {
		t.Fatalf("attempt failed: %+v", result)
	}
	if gotHeader != "2.0.0" {
		t.Errorf("X-Restli-Protocol-Version = %q", gotHeader)
	}
	if gotBody["author"] != "urn:li:person:xyz" {
		t.Errorf("author = %v", gotBody["author"])
	}
	if gotBody["lifecycleState"] != "PUBLISHED" {
		t.Errorf("lifecycleState = %v", gotBody["lifecycleState"])
	}
}

func TestUGCMemberStrategy_UsesPlaceholderURN(t *testing.T) {
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ugcPosts" {
			t.Errorf("member strategy must not resolve a profile, hit %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := &ugcMemberStrategy{client: testClient(server.URL)}
	result := s.Attempt(context.Background(), PostContent{Text: "text"})

	if !result.Succeeded {
		t.Fatalf("attempt failed: %+v", result)
	}
	if gotBody["author"] != placeholderMemberURN {
		t.Errorf("author = %v, want %s", gotBody["author"], placeholderMemberURN)
	}
}

func TestSelfTest_FailsWhenNothingReadable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c := testClient(server.URL)
	if err := c.SelfTest(context.Background()); err == nil {
		t.Errorf("expected self test failure with all endpoints denied")
	}
}

func TestSelfTest_PassesWithOneReadableEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/me" {
			json.NewEncoder(w).Encode(map[string]string{"id": "ok"})
			return
		}
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	c := testClient(server.URL)
	if err := c.SelfTest(context.Background()); err != nil {
		t.Errorf("self test failed: %v", err)
	}
}
