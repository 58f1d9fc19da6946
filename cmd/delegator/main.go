package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"task-delegator/internal/calendar"
	"task-delegator/internal/clock"
	"task-delegator/internal/config"
	"task-delegator/internal/log"
	"task-delegator/internal/notify"
	"task-delegator/internal/repository"
	"task-delegator/internal/service"
)

func main() {
	var (
		configPath = flag.String("config", "delegator.yaml", "path to config file")
		runJob     = flag.String("run-job", "", "force one job run and exit: reminders|rollover|calendar-sweep")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("config", err)
		os.Exit(1)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Error("db", err)
		os.Exit(1)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	taskRepo := repository.NewTaskRepository(db)
	claimRepo := repository.NewReminderLogRepository(db)
	assigneeRepo := repository.NewAssigneeRepository(db)

	clk := clock.NewFixed(cfg.TimezoneOffsetHours)

	var cal calendar.API
	if cfg.CalendarEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		cal, err = calendar.NewGoogleClient(ctx, cfg.GoogleCredentialsFile, cfg.GoogleTokenFile, cfg.GoogleCalendarID)
		cancel()
		if err != nil {
			log.Error("calendar client", err)
			os.Exit(1)
		}
	} else {
		log.Info("calendar sync disabled: no calendar id configured")
	}

	notifier, err := notify.New(cfg.TelegramToken, assigneeRepo)
	if err != nil {
		log.Error("notifier", err)
		os.Exit(1)
	}

	syncer := service.NewCalendarSyncService(taskRepo, cal, clk)
	reminders := service.NewReminderService(clk, taskRepo, claimRepo, notifier)
	rollover := service.NewRolloverService(clk, taskRepo)
	rolloverJob := service.NewRolloverJob(assigneeRepo, rollover, notifier, syncer)

	if *runJob != "" {
		os.Exit(runForced(*runJob, reminders, rolloverJob, syncer))
	}

	scheduler := service.NewSchedulerService(clk.Location())

	if _, err := scheduler.ScheduleHalfHourly(func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := reminders.RunTick(jobCtx, false); err != nil {
			log.Error("reminder tick", err)
		}
	}); err != nil {
		log.Error("schedule reminders", err)
		os.Exit(1)
	}

	if _, err := scheduler.ScheduleDaily(cfg.RolloverTime, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := rolloverJob.Run(jobCtx); err != nil {
			log.Error("rollover", err)
		}
	}); err != nil {
		log.Error("schedule rollover", err)
		os.Exit(1)
	}

	if cfg.CalendarEnabled() {
		if _, err := scheduler.ScheduleDaily(cfg.SweepTime, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
			defer cancel()
			if err := syncer.SweepAll(jobCtx); err != nil {
				log.Error("calendar sweep", err)
			}
		}); err != nil {
			log.Error("schedule calendar sweep", err)
			os.Exit(1)
		}
	}

	scheduler.Start()
	defer scheduler.Stop()

	log.Info("delegator started",
		"tz_offset", cfg.TimezoneOffsetHours,
		"rollover_at", cfg.RolloverTime,
		"sweep_at", cfg.SweepTime,
		"calendar", cfg.CalendarEnabled(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	log.Info("shutdown complete")
}

// runForced invokes one job outside its normal window for operational
// testing. Forced reminder runs still go through the dedup log.
func runForced(job string, reminders *service.ReminderService, rolloverJob *service.RolloverJob, syncer *service.CalendarSyncService) int {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	var err error
	switch job {
	case "reminders":
		err = reminders.RunTick(ctx, true)
	case "rollover":
		err = rolloverJob.Run(ctx)
	case "calendar-sweep":
		err = syncer.SweepAll(ctx)
	default:
		log.Info("unknown job", "job", job)
		return 2
	}
	if err != nil {
		log.Error("forced run", err, "job", job)
		return 1
	}
	log.Info("forced run complete", "job", job)
	return 0
}
