package campaign

import (
	"bytes"
	"context"
	"encoding/json"
	"html/template"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/config"
	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/models"
	mailpkg "github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/pkg/mail"
	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/pkg/taskqueue"
)

const pollInterval = 3 * time.Second

var markdownEngine = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Linkify,
		extension.Typographer,
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithHardWraps(),
		htmlrenderer.WithXHTML(),
	),
)

// renderMarkdown converts a campaign body to HTML. On conversion failure the
// raw text is escaped rather than dropped.
func renderMarkdown(body string) template.HTML {
	var out bytes.Buffer
	if err := markdownEngine.Convert([]byte(body), &out); err != nil {
		return template.HTML("<p>" + template.HTMLEscapeString(body) + "</p>")
	}
	return template.HTML(out.String())
}

// Worker drains queued campaign send tasks and delivers email.
type Worker struct {
	db     *gorm.DB
	cfg    *config.AppConfig
	mailer *mailpkg.Sender
	tasks  *taskqueue.Service
	log    *zap.Logger
}

func NewWorker(db *gorm.DB, cfg *config.AppConfig, mailer *mailpkg.Sender, tasks *taskqueue.Service, log *zap.Logger) *Worker {
	return &Worker{db: db, cfg: cfg, mailer: mailer, tasks: tasks, log: log}
}

// Run polls the task queue until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

func (w *Worker) drain(ctx context.Context) {
	for {
		task, err := w.tasks.ClaimNext(ctx, taskqueue.TypeCampaignSend)
		if err != nil {
			w.log.Warn("claim send task", zap.Error(err))
			return
		}
		if task == nil {
			return
		}

		var payload sendPayload
		if err := json.Unmarshal(task.Payload, &payload); err != nil {
			w.tasks.UpdateStatus(ctx, task.ID, taskqueue.TaskFailed, nil, "bad payload: "+err.Error())
			continue
		}

		if err := w.deliver(ctx, payload.CampaignID); err != nil {
			w.log.Error("campaign delivery failed",
				zap.String("campaign_id", payload.CampaignID), zap.Error(err))
			w.tasks.UpdateStatus(ctx, task.ID, taskqueue.TaskFailed, nil, err.Error())
			continue
		}
		w.tasks.UpdateStatus(ctx, task.ID, taskqueue.TaskCompleted, nil, "")
	}
}

// deliver sends one campaign to every active subscriber, filtered by the
// campaign's tags when present.
func (w *Worker) deliver(ctx context.Context, campaignID string) error {
	var camp models.CampaignModel
	if err := w.db.First(&camp, "id = ?", campaignID).Error; err != nil {
		return err
	}
	if camp.Status == models.CampaignSent || camp.Status == models.CampaignSending {
		return nil
	}

	tx := w.db.Model(&models.SubscriberModel{}).Where("status = ?", models.SubscriberActive)
	if len(camp.Tags) > 0 {
		clause := w.db.Session(&gorm.Session{NewDB: true})
		sub := clause.Where("1 = 0")
		for _, tag := range camp.Tags {
			sub = sub.Or("tags LIKE ?", "%"+tag+"%")
		}
		tx = tx.Where(sub)
	}

	var subscribers []models.SubscriberModel
	if err := tx.Find(&subscribers).Error; err != nil {
		return err
	}

	if err := w.db.Model(&camp).Updates(map[string]interface{}{
		"status":     models.CampaignSending,
		"recipients": len(subscribers),
	}).Error; err != nil {
		return err
	}

	body := renderMarkdown(camp.Body)
	landing := w.landingURL(&camp)
	base := w.cfg.Site.BaseURL

	var sent, failed int64
	for _, sub := range subscribers {
		if ctx.Err() != nil {
			break
		}
		data := mailpkg.CampaignData{
			Body:           body,
			SenderName:     w.cfg.Site.Name,
			LandingURL:     clickURL(base, camp.ID, sub.ID, landing),
			UnsubscribeURL: base + "/api/v1/public/unsubscribe/" + sub.Token,
			PixelURL:       base + "/t/o/" + camp.ID + "/" + sub.ID + ".gif",
		}
		if err := w.mailer.SendCampaign(sub.Email, camp.FromName, camp.Subject, data); err != nil {
			failed++
			w.log.Warn("send to subscriber failed",
				zap.String("campaign_id", camp.ID),
				zap.String("subscriber_id", sub.ID),
				zap.Error(err))
			continue
		}
		sent++
	}

	now := time.Now()
	status := models.CampaignSent
	if sent == 0 && failed > 0 {
		status = models.CampaignFailed
	}
	return w.db.Model(&camp).Updates(map[string]interface{}{
		"status":       status,
		"sent_count":   sent,
		"failed_count": failed,
		"sent_at":      &now,
	}).Error
}

// DispatchScheduled enqueues queued campaigns whose scheduled time has
// passed. Registered as a cron job.
func (w *Worker) DispatchScheduled(ctx context.Context) error {
	var due []models.CampaignModel
	err := w.db.Where("status = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ?",
		models.CampaignQueued, time.Now()).Find(&due).Error
	if err != nil {
		return err
	}
	for _, camp := range due {
		if _, err := w.tasks.Enqueue(ctx, taskqueue.TypeCampaignSend,
			sendPayload{CampaignID: camp.ID}, camp.ID, "campaigns"); err != nil {
			return err
		}
	}
	return nil
}

func (w *Worker) landingURL(camp *models.CampaignModel) string {
	if camp.LandingPageID == nil {
		return ""
	}
	var page models.LandingPageModel
	if err := w.db.Select("slug").First(&page, "id = ?", *camp.LandingPageID).Error; err != nil {
		return ""
	}
	return w.cfg.Site.BaseURL + "/p/" + page.Slug
}

// clickURL wraps the landing link in the click tracker so opens of the
// page are attributed to the campaign and subscriber.
func clickURL(base, campaignID, subscriberID, target string) string {
	if target == "" {
		return ""
	}
	return base + "/t/c/" + campaignID + "/" + subscriberID + "?to=" + template.URLQueryEscaper(target)
}
