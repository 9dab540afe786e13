package services

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/ytfeed/ytfeed-backend/internal/logger"
)

// ErrVideoNotFound means the catalog has no data for the video id: deleted
// video, wrong id, or an empty items list from the API. Callers treat it as
// a skip, not a failure.
var ErrVideoNotFound = errors.New("video not found in catalog")

// VideoEnrichment is the display metadata the catalog returns for one video.
type VideoEnrichment struct {
	VideoID         string
	Title           string
	ThumbnailURL    string
	ViewCount       int64
	VideoCreatedAt  string
	ChannelName     string
	ChannelPhotoURL string
}

// CatalogService resolves a video id to its display metadata.
type CatalogService interface {
	FetchVideoData(ctx context.Context, videoID string) (*VideoEnrichment, error)
}

type youTubeService struct {
	svc *youtube.Service
	log *logger.Logger
}

func NewYouTubeService(ctx context.Context, apiKey string, baseLog *logger.Logger) (CatalogService, error) {
	serviceLog := baseLog.With("service", "YouTubeService")
	svc, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}
	return &youTubeService{svc: svc, log: serviceLog}, nil
}

func (ys *youTubeService) FetchVideoData(ctx context.Context, videoID string) (*VideoEnrichment, error) {
	videoResp, err := ys.svc.Videos.List([]string{"snippet", "statistics"}).
		Id(videoID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch video %s: %w", videoID, err)
	}
	if len(videoResp.Items) == 0 {
		return nil, ErrVideoNotFound
	}

	video := videoResp.Items[0]
	channelResp, err := ys.svc.Channels.List([]string{"snippet"}).
		Id(video.Snippet.ChannelId).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch channel %s: %w", video.Snippet.ChannelId, err)
	}
	if len(channelResp.Items) == 0 {
		return nil, ErrVideoNotFound
	}

	channel := channelResp.Items[0]
	enrichment := &VideoEnrichment{
		VideoID:         video.Id,
		Title:           video.Snippet.Title,
		ThumbnailURL:    bestThumbnail(video.Snippet.Thumbnails),
		VideoCreatedAt:  video.Snippet.PublishedAt,
		ChannelName:     channel.Snippet.Title,
		ChannelPhotoURL: bestThumbnail(channel.Snippet.Thumbnails),
	}
	if video.Statistics != nil {
		enrichment.ViewCount = int64(video.Statistics.ViewCount)
	}
	return enrichment, nil
}

func bestThumbnail(details *youtube.ThumbnailDetails) string {
	if details == nil {
		return ""
	}
	for _, t := range []*youtube.Thumbnail{details.High, details.Medium, details.Default} {
		if t != nil && t.Url != "" {
			return t.Url
		}
	}
	return ""
}
