package linkedin

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// browserStrategy drives a visible Chrome session as the last resort. The
// operator logs in manually; the strategy waits for the feed to appear,
// then types and submits the post. It only runs when explicitly enabled in
// config AND confirmed on stdin, because it opens a real browser window.
type browserStrategy struct {
	loginWait time.Duration
	confirm   func() bool
}

// NewBrowserStrategy returns the interactive strategy, or nil when the
// feature is disabled.
func NewBrowserStrategy(enabled bool, loginWait time.Duration) Strategy {
	if !enabled {
		return nil
	}
	return &browserStrategy{
		loginWait: loginWait,
		confirm:   confirmOnStdin,
	}
}

func (s *browserStrategy) Name() string { return "browser" }

func confirmOnStdin() bool {
	fmt.Print("API posting failed. Open a browser window for manual login and automated posting? [y/N]: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func (s *browserStrategy) Attempt(ctx context.Context, content PostContent) AttemptResult {
	if !s.confirm() {
		return AttemptResult{Strategy: s.Name(), ErrorDetail: "declined by operator"}
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", false),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	if err := chromedp.Run(browserCtx, chromedp.Navigate("https://www.linkedin.com/login")); err != nil {
		return AttemptResult{Strategy: s.Name(), ErrorDetail: fmt.Sprintf("failed to open login page: %v", err)}
	}

	log.Printf("Waiting up to %s for manual login", s.loginWait)
	if err := s.waitForFeed(browserCtx); err != nil {
		return AttemptResult{Strategy: s.Name(), ErrorDetail: err.Error()}
	}

	err := chromedp.Run(browserCtx,
		chromedp.Click(`button.share-box-feed-entry__trigger`, chromedp.ByQuery),
		chromedp.WaitVisible(`div.ql-editor[contenteditable="true"]`, chromedp.ByQuery),
		chromedp.SendKeys(`div.ql-editor[contenteditable="true"]`, content.Text, chromedp.ByQuery),
		chromedp.Sleep(2*time.Second),
		chromedp.Click(`button.share-actions__primary-action`, chromedp.ByQuery),
		chromedp.Sleep(5*time.Second),
	)
	if err != nil {
		return AttemptResult{Strategy: s.Name(), ErrorDetail: fmt.Sprintf("posting flow failed: %v", err)}
	}

	log.Printf("Posted through browser session")
	return AttemptResult{Strategy: s.Name(), Succeeded: true}
}

// waitForFeed polls for the share box that only exists once the operator
// has finished logging in.
func (s *browserStrategy) waitForFeed(ctx context.Context) error {
	deadline := time.Now().Add(s.loginWait)
	for time.Now().Before(deadline) {
		var found bool
		err := chromedp.Run(ctx, chromedp.Evaluate(
			`document.querySelector("button.share-box-feed-entry__trigger") !== null`, &found))
		if err != nil {
			return fmt.Errorf("browser session lost while waiting for login: %w", err)
		}
		if found {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(3 * time.Second):
		}
	}
	return fmt.Errorf("login not completed within %s", s.loginWait)
}
