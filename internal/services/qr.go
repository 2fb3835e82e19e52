package services

import (
	"context"
	"strings"

	"github.com/skip2/go-qrcode"
)

// QRService renders a scannable link to the feed page
type QRService struct {
	feedURL string
}

// NewQRService creates a QRService for the given public feed URL
func NewQRService(feedURL string) *QRService {
	return &QRService{feedURL: strings.TrimSuffix(feedURL, "/")}
}

// FeedURL returns the URL encoded into the QR image
func (s *QRService) FeedURL() string {
	return s.feedURL + "/"
}

// FeedQRImage returns a PNG QR code linking to the feed
func (s *QRService) FeedQRImage(ctx context.Context) ([]byte, error) {
	if s.feedURL == "" {
		return nil, ErrFeedURLNotConfigured
	}
	return qrcode.Encode(s.FeedURL(), qrcode.Medium, 256)
}
