package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"communityapp/internal/logger"
	"communityapp/internal/model"
	"communityapp/internal/repository"

	"go.uber.org/zap"
)

const (
	DefaultDailyQuoteURL = "https://open.iciba.com/dsapi/"
	DailyQuoteHour       = 8
	dailyQuoteCategory   = "其他"

	fallbackQuote = "原文：Life is like a box of chocolates, you never know what you're going to get.\n" +
		"译文：生活就像一盒巧克力，你永远不知道下一颗是什么滋味。"
)

type dailyQuote struct {
	Content  string `json:"content"`
	Note     string `json:"note"`
	Dateline string `json:"dateline"`
}

// ContentJob publishes the daily quote post as the admin account.
type ContentJob struct {
	postRepo repository.PostRepository
	authorID uint
	url      string
	client   *http.Client
	now      func() time.Time
}

func NewContentJob(postRepo repository.PostRepository, authorID uint, url string) *ContentJob {
	if url == "" {
		url = DefaultDailyQuoteURL
	}
	return &ContentJob{
		postRepo: postRepo,
		authorID: authorID,
		url:      url,
		client:   &http.Client{Timeout: 10 * time.Second},
		now:      time.Now,
	}
}

// Run blocks, publishing once a day at 08:00 local time until ctx ends.
func (j *ContentJob) Run(ctx context.Context) {
	logger.Info("content job scheduled", zap.Int("hour", DailyQuoteHour))
	for {
		wait := nextRun(j.now(), DailyQuoteHour).Sub(j.now())
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			if _, err := j.PublishDailyQuote(ctx); err != nil {
				logger.Error("daily quote publish failed", zap.Error(err))
			}
		}
	}
}

// PublishDailyQuote fetches today's quote, falling back to a fixed one, and
// stores it as a post.
func (j *ContentJob) PublishDailyQuote(ctx context.Context) (*model.Post, error) {
	date := j.now().Format("2006/1/2")

	title := fmt.Sprintf("%s 每日一句", date)
	content := fallbackQuote
	if q, err := j.fetch(ctx); err != nil {
		logger.Warn("daily quote fetch failed, using fallback", zap.Error(err))
	} else {
		title = fmt.Sprintf("%s 金山词霸每日一句", date)
		content = fmt.Sprintf("原文：%s\n译文：%s\n日期：%s", q.Content, q.Note, q.Dateline)
	}

	post := &model.Post{
		Title:    title,
		Content:  content,
		AuthorID: j.authorID,
		Images:   model.ImageList{},
		Category: dailyQuoteCategory,
	}
	if err := j.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create daily quote post: %w", err)
	}
	logger.Info("daily quote published", zap.Uint("post_id", post.ID))
	return post, nil
}

func (j *ContentJob) fetch(ctx context.Context) (*dailyQuote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, j.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; communityapp)")

	resp, err := j.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("daily quote: unexpected status %d", resp.StatusCode)
	}

	var q dailyQuote
	if err := json.NewDecoder(resp.Body).Decode(&q); err != nil {
		return nil, fmt.Errorf("decode daily quote: %w", err)
	}
	if q.Content == "" {
		return nil, fmt.Errorf("daily quote: empty content")
	}
	return &q, nil
}

// nextRun returns the next occurrence of hour:00 strictly after now.
func nextRun(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
