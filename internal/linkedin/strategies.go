package linkedin

import (
	"context"
	"fmt"
	"log"
)

// PostContent is the already truncated post text plus an optional local
// image path.
type PostContent struct {
	Text      string
	ImagePath string
}

// AttemptResult records one posting attempt for diagnostics and for the
// final run report.
type AttemptResult struct {
	Strategy    string
	Succeeded   bool
	HTTPStatus  int
	ErrorDetail string
}

// Strategy is one way of publishing a post. Attempt must not retry
// internally across strategies; the chain owns ordering.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, content PostContent) AttemptResult
}

// shareStrategy uses the legacy v2/shares endpoint. Text only.
type shareStrategy struct {
	client *Client
}

func (s *shareStrategy) Name() string { return "shares-api" }

func (s *shareStrategy) Attempt(ctx context.Context, content PostContent) AttemptResult {
	payload := map[string]interface{}{
		"comment": content.Text,
		"visibility": map[string]string{
			"code": "anyone",
		},
	}

	status, detail, err := s.client.post(ctx, s.client.baseURL+"/shares", payload)
	if err != nil {
		return AttemptResult{Strategy: s.Name(), ErrorDetail: err.Error()}
	}
	if status == 200 || status == 201 {
		return AttemptResult{Strategy: s.Name(), Succeeded: true, HTTPStatus: status}
	}
	return AttemptResult{Strategy: s.Name(), HTTPStatus: status, ErrorDetail: detail}
}

// ugcStrategy posts through v2/ugcPosts with a resolved author URN and
// attaches the image when one exists.
type ugcStrategy struct {
	client *Client
}

func (s *ugcStrategy) Name() string { return "ugc-api" }

func (s *ugcStrategy) Attempt(ctx context.Context, content PostContent) AttemptResult {
	author := s.client.AuthorURN(ctx)
	return attemptUGC(ctx, s.client, s.Name(), author, content, true)
}

// ugcMemberStrategy retries ugcPosts with the member placeholder URN,
// which some token scopes accept when the person URN is rejected.
type ugcMemberStrategy struct {
	client *Client
}

func (s *ugcMemberStrategy) Name() string { return "ugc-member-urn" }

func (s *ugcMemberStrategy) Attempt(ctx context.Context, content PostContent) AttemptResult {
	return attemptUGC(ctx, s.client, s.Name(), placeholderMemberURN, content, false)
}

func attemptUGC(ctx context.Context, client *Client, name, author string, content PostContent, withImage bool) AttemptResult {
	shareContent := map[string]interface{}{
		"shareCommentary": map[string]string{
			"text": content.Text,
		},
		"shareMediaCategory": "NONE",
	}

	if withImage && content.ImagePath != "" {
		asset, err := client.UploadImage(ctx, author, content.ImagePath)
		if err != nil {
			log.Printf("Image upload failed, posting text only: %v", err)
		} else {
			shareContent["shareMediaCategory"] = "IMAGE"
			shareContent["media"] = []map[string]interface{}{
				{
					"status": "READY",
					"media":  asset,
				},
			}
		}
	}

	payload := map[string]interface{}{
		"author":         author,
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]interface{}{
			"com.linkedin.ugc.ShareContent": shareContent,
		},
		"visibility": map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}

	status, detail, err := client.post(ctx, client.baseURL+"/ugcPosts", payload)
	if err != nil {
		return AttemptResult{Strategy: name, ErrorDetail: err.Error()}
	}
	if status == 200 || status == 201 {
		return AttemptResult{Strategy: name, Succeeded: true, HTTPStatus: status}
	}
	return AttemptResult{Strategy: name, HTTPStatus: status, ErrorDetail: fmt.Sprintf("author=%s: %s", author, detail)}
}
