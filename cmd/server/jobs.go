// Package main provides the campusplan server entry point.
package main

import (
	"context"
	"time"

	"github.com/jheinrich-dev/campusplan/internal/bot"
	"github.com/jheinrich-dev/campusplan/internal/logger"
	"github.com/jheinrich-dev/campusplan/internal/markalert"
	"github.com/robfig/cron/v3"
)

// One poll cycle must finish before the next minute starts it again; the
// SkipIfStillRunning wrapper drops overlapping runs of slow cycles.
const pollCycleTimeout = 5 * time.Minute

// stoppable is the part of cron.Cron the shutdown path needs.
type stoppable interface {
	Stop() context.Context
}

// startPollJob schedules the periodic exam check. Every run checks all
// subscribed exams and notifies each chat about changed distributions.
func startPollJob(spec string, poller *markalert.Poller, tgBot *bot.Bot, log *logger.Logger) (*cron.Cron, error) {
	jobLog := log.WithModule("polljob")

	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DiscardLogger),
		cron.Recover(cron.DiscardLogger),
	))

	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), pollCycleTimeout)
		defer cancel()

		changes := poller.CheckAll(ctx)
		for chatID, own := range changes {
			tgBot.NotifyChanges(chatID, own)
		}
		if len(changes) > 0 {
			jobLog.WithField("chats", len(changes)).Info("Result notifications sent")
		}
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	return c, nil
}
