package telegram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"linkbot/internal/metrics"
)

// SendMessage sends text message to Telegram chat/channel with retry logic
func SendMessage(token, chatID, text string) error {
	maxRetries := 3

	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := sendMessageOnce(token, chatID, text)
		if err == nil {
			log.Printf("Message sent to Telegram (try %d)", attempt)
			metrics.Global.IncrementRelayMessagesSent()
			return nil
		}

		log.Printf("Error send to Telegram (try %d/%d): %v", attempt, maxRetries, err)

		if attempt < maxRetries {
			// Exponential backoff: 2^attempt seconds
			waitTime := time.Duration(1<<attempt) * time.Second
			log.Printf("Wait %v before next try...", waitTime)
			time.Sleep(waitTime)
		}
	}

	return fmt.Errorf("can't send message after %d tries", maxRetries)
}

// sendMessageOnce does one try to send message
func sendMessageOnce(token, chatID, text string) error {
	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", token)

	payload := map[string]interface{}{
		"chat_id":                  chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true, // No link preview for clean
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error make JSON: %v", err)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Post(url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("error HTTP request: %v", err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			log.Printf("Warning: failed to close response body: %v", err)
		}
	}(resp.Body)

	if resp.StatusCode != 200 {
		return fmt.Errorf("telegram API error: status %d", resp.StatusCode)
	}

	return nil
}

// SendPhotoFile uploads a local image with a caption, with retry logic.
// Used when the run produced a generated image on disk.
func SendPhotoFile(token, chatID, imagePath, caption string) error {
	maxRetries := 3
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := sendPhotoFileOnce(token, chatID, imagePath, caption)
		if err == nil {
			log.Printf("Photo sent to Telegram (try %d)", attempt)
			metrics.Global.IncrementRelayMessagesSent()
			return nil
		}
		log.Printf("Error send photo to Telegram (try %d/%d): %v", attempt, maxRetries, err)
		if attempt < maxRetries {
			waitTime := time.Duration(1<<attempt) * time.Second
			log.Printf("Wait %v before next try...", waitTime)
			time.Sleep(waitTime)
		}
	}
	return fmt.Errorf("can't send photo after %d tries", maxRetries)
}

func sendPhotoFileOnce(token, chatID, imagePath, caption string) error {
	// Telegram caption max ~1024 chars; trim if longer
	if len(caption) > 1000 {
		caption = caption[:1000]
	}

	file, err := os.Open(imagePath)
	if err != nil {
		return fmt.Errorf("error open image: %v", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.Printf("Warning: failed to close image file: %v", err)
		}
	}()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("chat_id", chatID); err != nil {
		return fmt.Errorf("error build form: %v", err)
	}
	if err := writer.WriteField("caption", caption); err != nil {
		return fmt.Errorf("error build form: %v", err)
	}
	if err := writer.WriteField("parse_mode", "HTML"); err != nil {
		return fmt.Errorf("error build form: %v", err)
	}
	part, err := writer.CreateFormFile("photo", filepath.Base(imagePath))
	if err != nil {
		return fmt.Errorf("error build form: %v", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("error read image: %v", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("error build form: %v", err)
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendPhoto", token)
	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Post(url, writer.FormDataContentType(), &buf)
	if err != nil {
		return fmt.Errorf("error HTTP request: %v", err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			log.Printf("Warning: failed to close response body: %v", err)
		}
	}(resp.Body)

	if resp.StatusCode != 200 {
		return fmt.Errorf("telegram API error: status %d", resp.StatusCode)
	}
	return nil
}
