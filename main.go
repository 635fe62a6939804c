package main

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/cppla/blogicum/config"
	"github.com/cppla/blogicum/models"
	"github.com/cppla/blogicum/routes"
	"github.com/cppla/blogicum/services"
	"github.com/cppla/blogicum/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	db := config.InitDatabase(models.All()...)
	svc := services.New(db)

	r := routes.SetupRouter(svc)

	jobs, err := startMaintenance(svc, cfg)
	if err != nil {
		utils.Sugar.Fatalf("failed to schedule maintenance: %v", err)
	}

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r, func() { <-jobs.Stop().Done() }); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}

// startMaintenance schedules the nightly page view pruning.
func startMaintenance(svc *services.Service, cfg config.AppConfig) (*cron.Cron, error) {
	retention := time.Duration(cfg.PageViewRetentionDays) * 24 * time.Hour
	c := cron.New(cron.WithLocation(time.UTC))
	_, err := c.AddFunc("@daily", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		n, err := svc.PrunePageViews(ctx, retention)
		if err != nil {
			utils.Sugar.Warnf("page view pruning failed: %v", err)
			return
		}
		utils.Sugar.Infof("pruned %d page view rows", n)
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
