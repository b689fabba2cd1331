// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package sbsctlschedule runs a job on a cron schedule until its context is canceled.
package sbsctlschedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// parser accepts five-field expressions and descriptors such as @daily.
var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseSchedule parses a cron expression.
func ParseSchedule(expr string) (cron.Schedule, error) {
	schedule, err := parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return schedule, nil
}

// NextRunTimes returns the next count activation times of the expression after from.
func NextRunTimes(expr string, from time.Time, count int) ([]time.Time, error) {
	schedule, err := ParseSchedule(expr)
	if err != nil {
		return nil, err
	}
	runTimes := make([]time.Time, 0, count)
	next := from
	for range count {
		next = schedule.Next(next)
		runTimes = append(runTimes, next)
	}
	return runTimes, nil
}

// Run calls job at every activation of the expression until ctx is canceled.
//
// Activations are skipped while the previous job is still running. A job error
// is logged and does not stop the schedule. Run returns after the running job,
// if any, has finished.
func Run(ctx context.Context, logger *slog.Logger, expr string, job func(context.Context) error) error {
	schedule, err := ParseSchedule(expr)
	if err != nil {
		return err
	}
	cronLogger := &slogCronLogger{logger: logger}
	scheduler := cron.New(
		cron.WithParser(parser),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)
	scheduler.Schedule(schedule, cron.FuncJob(func() {
		logger.Info("scheduled run started")
		if err := job(ctx); err != nil {
			logger.Error("scheduled run failed", "error", err)
			return
		}
		logger.Info("scheduled run finished")
	}))
	scheduler.Start()
	logger.Info("scheduler started", "cron", expr, "next", schedule.Next(time.Now()))
	<-ctx.Done()
	// Wait for a running job to return.
	<-scheduler.Stop().Done()
	logger.Info("scheduler stopped")
	return nil
}

// slogCronLogger adapts a *slog.Logger to cron.Logger.
type slogCronLogger struct {
	logger *slog.Logger
}

func (l *slogCronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l *slogCronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
