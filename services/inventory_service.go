package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"

	"encanto-system/models"
)

type alertNotifier interface {
	Notify(ctx context.Context, userID, title, body, kind string)
}

// InventoryService watches product stock levels and alerts owners when a
// product drops to or below its restock floor. Product CRUD itself goes
// through the PocketBase record API; this only reads.
type InventoryService struct {
	app      core.App
	notifier alertNotifier
	settings reminderSettings
	interval time.Duration

	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewInventoryService(app core.App, notifier alertNotifier, settings reminderSettings, interval time.Duration) *InventoryService {
	return &InventoryService{
		app:      app,
		notifier: notifier,
		settings: settings,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start launches the periodic low-stock sweep.
func (s *InventoryService) Start() {
	s.wg.Add(1)
	go s.watchLoop()
}

func (s *InventoryService) watchLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Println("Low-stock watcher started")

	for {
		select {
		case <-ticker.C:
			s.CheckLowStock(context.Background())
		case <-s.stopChan:
			log.Println("Low-stock watcher stopping")
			return
		}
	}
}

// CheckLowStock sweeps products once and fires an alert per low product,
// gated by each owner's low-stock flag. Failures are logged and dropped;
// the next sweep retries naturally.
func (s *InventoryService) CheckLowStock(ctx context.Context) int {
	records, err := s.app.FindRecordsByFilter("products", "stock <= min_stock", "+name", 0, 0)
	if err != nil {
		log.Printf("Error scanning products for low stock: %v", err)
		return 0
	}

	alerted := 0
	for _, r := range records {
		product := productFromRecord(r)

		if !s.settings.Get(ctx, product.CreatedBy).LowStockAlerts {
			continue
		}

		s.notifier.Notify(ctx, product.CreatedBy,
			"Alerta de Inventario",
			fmt.Sprintf(`Quedan %d unidades de "%s" (precio %s)`,
				product.Stock, product.Name, product.Price.StringFixed(2)),
			models.KindLowStock)
		alerted++
	}

	return alerted
}

// Stop halts the sweep loop and waits for it to exit.
func (s *InventoryService) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}

func productFromRecord(r *core.Record) models.Product {
	return models.Product{
		ID:         r.Id,
		Name:       r.GetString("name"),
		Price:      decimal.NewFromFloat(r.GetFloat("price")),
		Stock:      r.GetInt("stock"),
		MinStock:   r.GetInt("min_stock"),
		SupplierID: r.GetString("supplier"),
		CreatedBy:  r.GetString("created_by"),
	}
}
