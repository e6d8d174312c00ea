package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/km-arc/getall/framework/app"
	"github.com/km-arc/getall/framework/capability"
	"github.com/km-arc/getall/framework/container"
	"github.com/km-arc/getall/framework/dispatch"
	"github.com/km-arc/getall/framework/routing"
	"github.com/km-arc/getall/internal/orders"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New([]*capability.Module{orders.Module()}) // loads .env automatically
	if err != nil {
		log.Fatalf("app: %v", err)
	}
	logger, err := application.Logger()
	if err != nil {
		log.Fatalf("app: %v", err)
	}
	defer logger.Sync()

	if err := application.Register(&orders.ServiceProvider{
		Stock: map[string]int{"book": 10, "pen": 100},
	}); err != nil {
		logger.Fatal("register orders failed", zap.Error(err))
	}
	if err := application.Boot(); err != nil {
		logger.Fatal("boot failed", zap.Error(err))
	}

	r, err := application.Router()
	if err != nil {
		logger.Fatal("router failed", zap.Error(err))
	}
	resolver, err := application.Resolver()
	if err != nil {
		logger.Fatal("resolver failed", zap.Error(err))
	}
	publisher, err := container.Construct[*dispatch.Publisher[orders.OrderPlaced]](ctx, application.Container)
	if err != nil {
		logger.Fatal("publisher failed", zap.Error(err))
	}

	// ── Orders ───────────────────────────────────────────────────────────────

	// POST /orders/{id} → publish OrderPlaced to every discovered handler
	r.Post("/orders/{id}", func(w http.ResponseWriter, req *http.Request) {
		var order orders.OrderPlaced
		if err := routing.Bind(req, &order); err != nil {
			routing.JSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}
		order.ID = routing.Param(req, "id")
		if err := publisher.Publish(req.Context(), order); err != nil {
			routing.JSON(w, http.StatusUnprocessableEntity, map[string]any{"error": err.Error()})
			return
		}
		routing.JSON(w, http.StatusCreated, map[string]any{"data": order})
	})

	// GET /revenue → answered by the single RevenueQuery handler
	r.Get("/revenue", func(w http.ResponseWriter, req *http.Request) {
		revenue, err := dispatch.Send[orders.RevenueQuery, orders.Revenue](req.Context(), resolver, orders.RevenueQuery{})
		if err != nil {
			routing.JSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}
		routing.JSON(w, http.StatusOK, map[string]any{"data": revenue})
	})

	if err := application.Run(ctx); err != nil {
		logger.Fatal("run failed", zap.Error(err))
	}
}
