package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/autobrr/autobrr/pkg/errors"
	"github.com/autobrr/autobrr/pkg/sharedhttp"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"

	"github.com/autobrr/animelink/pkg/config"
)

const (
	maxEmbedsPerMessage = 10
	maxCharactersPerMsg = 6000

	// hardcoded limit of fields to avoid hammering the api
	maxTotalFields = 250

	// webhook rate limit is 30 requests per minute
	webhookRequestsPerMinute = 30
)

type DiscordMessage struct {
	Content interface{}    `json:"content"`
	Embeds  []DiscordEmbed `json:"embeds,omitempty"`
}

type DiscordEmbed struct {
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Color       int                  `json:"color"`
	Fields      []DiscordEmbedsField `json:"fields,omitempty"`
	Footer      DiscordEmbedsFooter  `json:"footer,omitempty"`
	Timestamp   time.Time            `json:"timestamp"`
}

type DiscordEmbedsFooter struct {
	Text string `json:"text"`
}

type DiscordEmbedsField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type EmbedColors int

const (
	LIGHT_BLUE EmbedColors = 0x58b9ff
	RED        EmbedColors = 0xed4245
	GREEN      EmbedColors = 0x57f287
)

type discordSender struct {
	log    *logrus.Entry
	config config.NotificationsConfig

	httpClient *retryablehttp.Client
	limiter    ratelimit.Limiter
}

func (d *discordSender) Name() string {
	return "discord"
}

func NewDiscordSender(log *logrus.Entry, config config.NotificationsConfig) Sender {
	client := retryablehttp.NewClient()
	client.HTTPClient = &http.Client{
		Timeout:   time.Second * 30,
		Transport: sharedhttp.Transport,
	}
	client.RetryMax = 3
	client.Logger = nil

	return &discordSender{
		log:        log.WithField("sender", "discord"),
		config:     config,
		httpClient: client,
		limiter:    ratelimit.New(webhookRequestsPerMinute, ratelimit.Per(time.Minute)),
	}
}

func (d *discordSender) CanSend() bool {
	return d.config.Service.Discord != ""
}

func (d *discordSender) Send(ctx context.Context, title string, description string, runTime time.Duration,
	fields []Field, dryRun bool) error {
	var (
		allEmbeds   []DiscordEmbed
		totalFields = len(fields)
		timestamp   = time.Now()

		batches      [][]DiscordEmbed
		currentBatch []DiscordEmbed
		currentChars int
	)

	if dryRun {
		title = title + " (Dry Run)"
	}

	if totalFields == 0 && d.config.SkipEmptyRun {
		d.log.Debug("Nothing resolved, skipping notification")
		return nil
	}

	rt := runTime.Truncate(time.Millisecond).String()

	// summary only when there is nothing to list, too much to list, or details are off
	if totalFields == 0 || totalFields > maxTotalFields || !d.config.Detailed {
		allEmbeds = append(allEmbeds, DiscordEmbed{
			Title:       title,
			Description: description,
			Color:       int(LIGHT_BLUE),
			Footer: DiscordEmbedsFooter{
				Text: d.buildFooter(0, totalFields, rt),
			},
			Timestamp: timestamp,
		})
	} else {
		for i, field := range fields {
			embed := DiscordEmbed{
				Title:  title,
				Color:  int(GREEN),
				Fields: d.parseFieldValueToInlineFields(field.Value),
				Footer: DiscordEmbedsFooter{
					Text: d.buildFooter(i+1, totalFields, rt),
				},
				Timestamp: timestamp,
			}
			if field.Name != "" {
				embed.Description = fmt.Sprintf("**%s**", field.Name)
			}

			allEmbeds = append(allEmbeds, embed)
		}
		allEmbeds = append(allEmbeds, DiscordEmbed{
			Title:       fmt.Sprintf("%s - Summary", title),
			Description: description,
			Color:       int(LIGHT_BLUE),
			Footer: DiscordEmbedsFooter{
				Text: d.buildFooter(0, 0, rt),
			},
			Timestamp: timestamp,
		})
	}

	flush := func() {
		if len(currentBatch) == 0 {
			return
		}
		batches = append(batches, currentBatch)
		currentBatch = nil
		currentChars = 0
	}

	for _, e := range allEmbeds {
		eSize, err := embedSize(e)
		if err != nil {
			return errors.Wrap(err, "failed to calculate embed size for batching")
		}

		if len(currentBatch) >= maxEmbedsPerMessage || currentChars+eSize > maxCharactersPerMsg {
			flush()
		}

		currentBatch = append(currentBatch, e)
		currentChars += eSize
	}
	flush()

	totalMsgs := len(batches)

	for i, batch := range batches {
		jsonData, err := json.Marshal(DiscordMessage{Embeds: batch})
		if err != nil {
			return errors.Wrap(err, "could not marshal json request for a message chunk")
		}

		d.limiter.Take()
		if err := d.sendRequest(ctx, jsonData); err != nil {
			return errors.Wrap(err, "failed to send a message chunk to Discord")
		}

		d.log.Debugf("Sent Discord message %d/%d (%d embeds, %d chars).", i+1, totalMsgs, len(batch), len(jsonData))
	}

	return nil
}

func (d *discordSender) sendRequest(ctx context.Context, jsonData []byte) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, d.config.Service.Discord,
		bytes.NewReader(jsonData))
	if err != nil {
		return errors.Wrap(err, "could not create request")
	}

	req.Header.Set("Content-Type", "application/json")

	res, err := d.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "client request error")
	}
	defer res.Body.Close()

	d.log.Tracef("Discord response status: %d", res.StatusCode)

	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusNoContent {
		body, readErr := io.ReadAll(res.Body)
		if readErr != nil {
			return errors.Wrap(readErr, "could not read body")
		}

		return errors.New("unexpected status: %v body: %v", res.StatusCode, string(body))
	}

	return nil
}

// BuildField describes one resolution as inline embed fields serialized into the value.
func (d *discordSender) BuildField(opt BuildOptions) Field {
	inlineFields := []DiscordEmbedsField{
		{Name: "Target", Value: opt.Target, Inline: true},
		{Name: "Status", Value: opt.Status, Inline: true},
		{Name: "Path", Value: opt.Path, Inline: true},
	}

	jsonData, _ := json.Marshal(inlineFields)

	return Field{
		Name:  opt.Source,
		Value: string(jsonData),
	}
}

func (d *discordSender) parseFieldValueToInlineFields(value string) []DiscordEmbedsField {
	var fields []DiscordEmbedsField

	if err := json.Unmarshal([]byte(value), &fields); err != nil {
		d.log.WithError(err).Error("Failed to parse field value as JSON")
		return []DiscordEmbedsField{}
	}

	return fields
}

func (d *discordSender) buildFooter(progress int, totalFields int, runTime string) string {
	if totalFields == 0 {
		return fmt.Sprintf("Took: %s", runTime)
	}

	return fmt.Sprintf("Progress: %d/%d | Took: %s", progress, totalFields, runTime)
}

func embedSize(embed DiscordEmbed) (int, error) {
	jsonData, err := json.Marshal(embed)
	if err != nil {
		return 0, err
	}
	return len(jsonData), nil
}
