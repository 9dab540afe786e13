package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ytfeed/ytfeed-backend/internal/logger"
	"github.com/ytfeed/ytfeed-backend/internal/repos"
	"github.com/ytfeed/ytfeed-backend/internal/types"
)

// How many videos the cache keeps per tag.
const topVideosPerTag = 4

// TopVideosService rebuilds the cached_video_data table from the current
// aggregate counts.
type TopVideosService interface {
	Refresh(ctx context.Context) error
}

type topVideosService struct {
	db              *gorm.DB
	log             *logger.Logger
	videoDataRepo   repos.VideoDataRepo
	cachedVideoRepo repos.CachedVideoRepo
	catalog         CatalogService
}

func NewTopVideosService(db *gorm.DB, baseLog *logger.Logger, videoDataRepo repos.VideoDataRepo, cachedVideoRepo repos.CachedVideoRepo, catalog CatalogService) TopVideosService {
	serviceLog := baseLog.With("service", "TopVideosService")
	return &topVideosService{
		db:              db,
		log:             serviceLog,
		videoDataRepo:   videoDataRepo,
		cachedVideoRepo: cachedVideoRepo,
		catalog:         catalog,
	}
}

// Refresh wipes the cache, then walks every distinct tag: the top videos for
// the tag are enriched through the catalog, written as cache rows, and their
// aggregate counters reset to zero. Enrichment failures skip that video and
// leave its counter alone. Work commits once per tag, so a storage failure
// mid-job keeps the tags already processed.
//
// Concurrent submissions can bump a counter between the ranking read and the
// reset write; that increment is lost. Accepted inconsistency window.
func (ts *topVideosService) Refresh(ctx context.Context) error {
	start := time.Now()
	ts.log.Info("Starting top-videos cache refresh")

	if err := ts.cachedVideoRepo.DeleteAll(ctx, nil); err != nil {
		ts.log.Error("Failed to clear cached videos", "error", err)
		return fmt.Errorf("failed to clear cached videos: %w", err)
	}

	allVideos, err := ts.videoDataRepo.GetAll(ctx, nil)
	if err != nil {
		ts.log.Error("Failed to load video aggregates", "error", err)
		return fmt.Errorf("failed to load video aggregates: %w", err)
	}

	tags := distinctTags(allVideos)
	cached := 0
	for _, tag := range tags {
		n, err := ts.refreshTag(ctx, tag)
		if err != nil {
			ts.log.Error("Cache refresh aborted", "tag", tag, "error", err)
			return fmt.Errorf("failed to refresh tag %q: %w", tag, err)
		}
		cached += n
	}

	ts.log.Info("Top-videos cache refresh complete", "tags", len(tags), "cached_videos", cached, "duration", time.Since(start))
	return nil
}

// refreshTag processes one tag inside its own transaction and reports how
// many cache rows it wrote.
func (ts *topVideosService) refreshTag(ctx context.Context, tag string) (int, error) {
	written := 0
	err := ts.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		topVideos, err := ts.videoDataRepo.GetTopByTagLike(ctx, tx, tag, topVideosPerTag)
		if err != nil {
			return fmt.Errorf("failed to rank videos: %w", err)
		}

		for _, video := range topVideos {
			enrichment, err := ts.catalog.FetchVideoData(ctx, video.VideoID)
			if err != nil {
				// Deleted videos, upstream quota, transient failures: skip
				// the video and keep its counter for the next cycle.
				ts.log.Warn("Skipping video during refresh", "tag", tag, "video_id", video.VideoID, "error", err)
				continue
			}

			cachedVideo := &types.CachedVideoData{
				VideoID:         video.VideoID,
				TagCategory:     tag,
				Title:           enrichment.Title,
				ThumbnailURL:    enrichment.ThumbnailURL,
				ViewCount:       enrichment.ViewCount,
				VideoCreatedAt:  enrichment.VideoCreatedAt,
				ChannelName:     enrichment.ChannelName,
				ChannelPhotoURL: enrichment.ChannelPhotoURL,
				CacheTimestamp:  time.Now().UTC(),
			}
			if err := ts.cachedVideoRepo.Create(ctx, tx, cachedVideo); err != nil {
				return fmt.Errorf("failed to write cache row: %w", err)
			}
			if err := ts.videoDataRepo.ResetCount(ctx, tx, video.VideoID); err != nil {
				return fmt.Errorf("failed to reset video counter: %w", err)
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

// distinctTags splits every aggregate's tag string and returns the sorted
// set of individual tags.
func distinctTags(videos []*types.VideoData) []string {
	set := map[string]struct{}{}
	for _, video := range videos {
		for _, tag := range strings.Split(video.Tags, ",") {
			if tag == "" {
				continue
			}
			set[tag] = struct{}{}
		}
	}
	tags := make([]string, 0, len(set))
	for tag := range set {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
