// Package forwarder runs the bridge: poll the mailbox, run each unseen
// message through the extraction pipeline, deliver to Discord, mark
// seen.
package forwarder

import (
	"context"
	"log/slog"
	"time"

	"github.com/tracyhatemice/mailcord/internal/config"
	"github.com/tracyhatemice/mailcord/internal/discord"
	"github.com/tracyhatemice/mailcord/internal/mailparse"
	"github.com/tracyhatemice/mailcord/internal/payload"
	"github.com/tracyhatemice/mailcord/internal/receiver"
	"github.com/tracyhatemice/mailcord/internal/render"
)

// Forwarder monitors one mailbox and bridges new messages to Discord.
type Forwarder struct {
	cfg       *config.Config
	receiver  receiver.Receiver
	sender    discord.Sender
	renderer  render.Renderer
	fetcher   *mailparse.Fetcher
	assembler *payload.Assembler
	logger    *slog.Logger
}

// New creates a Forwarder.
func New(cfg *config.Config, recv receiver.Receiver, sender discord.Sender, renderer render.Renderer, logger *slog.Logger) *Forwarder {
	return &Forwarder{
		cfg:      cfg,
		receiver: recv,
		sender:   sender,
		renderer: renderer,
		fetcher:  &mailparse.Fetcher{Logger: logger},
		assembler: &payload.Assembler{
			AnonymizeSender: cfg.Forward.AnonymizeSender,
			Logger:          logger,
		},
		logger: logger,
	}
}

// Run polls the mailbox on the configured interval until ctx is
// cancelled. The in-flight tick finishes message boundaries cleanly; a
// message is only marked seen after its delivery attempt.
func (f *Forwarder) Run(ctx context.Context) {
	f.logger.Info("starting forwarder",
		"protocol", f.cfg.Mailbox.Protocol,
		"host", f.cfg.Mailbox.Host,
		"interval", f.cfg.Mailbox.PollInterval(),
	)

	// Run immediately on start, then on interval.
	f.poll(ctx)

	ticker := time.NewTicker(f.cfg.Mailbox.PollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			f.logger.Info("forwarder stopped")
			return
		case <-ticker.C:
			f.poll(ctx)
		}
	}
}

func (f *Forwarder) poll(ctx context.Context) {
	f.logger.Debug("polling")

	sess, err := f.receiver.Connect(ctx)
	if err != nil {
		f.logger.Error("mailbox connect failed", "error", err)
		return
	}
	defer sess.Close()

	messages, err := sess.Unseen(ctx)
	if err != nil {
		f.logger.Error("unseen query failed", "error", err)
		return
	}
	if len(messages) == 0 {
		f.logger.Debug("no new emails")
		return
	}

	for _, msg := range messages {
		if ctx.Err() != nil {
			f.logger.Info("shutdown requested, abandoning tick")
			return
		}

		delivered := f.process(ctx, msg)
		if !delivered && !f.cfg.Forward.MarkSeenOnFailure {
			continue
		}
		if err := sess.MarkSeen(ctx, msg); err != nil {
			f.logger.Error("mark seen failed", "msg_id", msg.ID, "error", err)
		}
	}
}

// process runs one message through the pipeline and attempts exactly
// one delivery. It reports whether delivery succeeded.
func (f *Forwarder) process(ctx context.Context, msg receiver.Message) bool {
	content, err := mailparse.Walk(msg.Raw, f.logger)
	if err != nil {
		// Unreadable message: still deliver a placeholder notification
		// rather than dropping it silently.
		f.logger.Error("message parse failed", "msg_id", msg.ID, "error", err)
		content = &mailparse.Content{}
	}

	snippet := content.Snippet()

	var artifacts []payload.Artifact
	if f.cfg.Forward.RenderPDF {
		artifacts = f.renderArtifacts(ctx, content, snippet, msg.ID)
	} else {
		artifacts = f.imageArtifacts(ctx, content)
	}

	p := f.assembler.Assemble(content.Subject, content.Sender, snippet, artifacts)
	defer p.Release()

	if err := f.sender.Send(ctx, p); err != nil {
		f.logger.Error("delivery failed", "msg_id", msg.ID, "error", err)
		return false
	}

	f.logger.Info("forwarded", "msg_id", msg.ID, "title", p.Title, "artifacts", len(p.Artifacts))
	return true
}

// renderArtifacts produces the rendered-document artifact. Inline cid
// images are rewritten to data: URIs first; external references stay
// live URLs and load during the render. Render failure falls back to
// snippet-only delivery.
func (f *Forwarder) renderArtifacts(ctx context.Context, content *mailparse.Content, snippet, msgID string) []payload.Artifact {
	htmlBody := content.HTML
	if htmlBody == "" {
		htmlBody = render.WrapPlainText(snippet)
	} else {
		htmlBody = mailparse.InlineDataURIs(htmlBody, content.Parts)
	}

	pdf, err := f.renderer.RenderPDF(ctx, htmlBody)
	if err != nil {
		f.logger.Warn("pdf render failed, delivering snippet only", "msg_id", msgID, "error", err)
		return nil
	}

	return []payload.Artifact{{
		Name:   render.DocumentFilename(content.Subject),
		Data:   pdf,
		Source: payload.SourceDocument,
	}}
}

// imageArtifacts collects image material: MIME parts in traversal
// order, then externally referenced images in HTML appearance order.
func (f *Forwarder) imageArtifacts(ctx context.Context, content *mailparse.Content) []payload.Artifact {
	var artifacts []payload.Artifact
	for _, part := range content.Parts {
		source := payload.SourceAttached
		if part.ContentID != "" {
			source = payload.SourceInline
		}
		artifacts = append(artifacts, payload.Artifact{
			Name:   part.Filename,
			Data:   part.Data,
			Source: source,
		})
	}

	if content.HTML != "" {
		_, urls := mailparse.ExtractHTML(content.HTML)
		for _, img := range f.fetcher.Fetch(ctx, urls) {
			artifacts = append(artifacts, payload.Artifact{
				Name:   img.Name,
				Data:   img.Data,
				Source: payload.SourceExternal,
			})
		}
	}

	return artifacts
}
