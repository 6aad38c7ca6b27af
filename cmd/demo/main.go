package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"rideshare/internal/client"
	"rideshare/internal/config"
	"rideshare/internal/models"
	"rideshare/internal/store"
	"rideshare/internal/validators"
	"rideshare/pkg/fare"
	"rideshare/pkg/kvstore"
	"rideshare/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logg, err := logger.NewLogger(&logger.Config{
		Level:   logger.LogLevel(cfg.App.LogLevel),
		Format:  cfg.App.LogFormat,
		AppName: cfg.App.Name,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	kv, err := openStorage(cfg.Storage)
	if err != nil {
		logg.Fatalf("Failed to open %s storage: %v", cfg.Storage.Backend, err)
	}
	defer kv.Close()
	logg.WithField("backend", cfg.Storage.Backend).Info("Storage ready")

	// Fare estimation goes through the maps client when a key is
	// configured and falls back to the local estimator otherwise.
	var primary fare.Estimator
	if cfg.Maps.APIKey != "" {
		estimator, err := fare.NewMapsEstimator(cfg.Maps.APIKey)
		if err != nil {
			logg.WithError(err).Warn("Maps estimator unavailable, using local fares")
		} else {
			primary = estimator
		}
	}
	fares := fare.NewService(primary, fare.NewLocalEstimator(), logg)

	engine := store.New(&store.Config{
		Latency:         cfg.Store.Latency,
		SimInterval:     cfg.Simulator.Interval,
		SimStepFraction: cfg.Simulator.StepFraction,
		SimEpsilon:      cfg.Simulator.Epsilon,
	}, kv, logg)
	defer engine.Close()

	session := client.NewSession(engine, kv, logg, cfg.Client.ReconnectWindow)

	if err := runDemo(context.Background(), engine, session, fares, logg); err != nil {
		logg.Fatalf("Demo run failed: %v", err)
	}
}

// routeInput pins the scripted trip to known waypoints.
type routeInput struct {
	Pickup  string `validate:"required,trip_location"`
	Dropoff string `validate:"required,trip_location,nefield=Pickup"`
}

func openStorage(cfg *config.StorageConfig) (kvstore.KV, error) {
	switch cfg.Backend {
	case "redis":
		return kvstore.NewRedisStore(&kvstore.RedisConfig{
			Host:        cfg.RedisHost,
			Port:        cfg.RedisPort,
			Password:    cfg.RedisPassword,
			DB:          cfg.RedisDB,
			DialTimeout: cfg.RedisTimeout,
		})
	case "memory":
		return kvstore.NewMemoryStore(), nil
	default:
		return kvstore.NewFileStore(cfg.DataDir)
	}
}

// runDemo walks one trip through its whole lifecycle: a customer requests a
// ride, a driver accepts, the simulated driver closes in, the trip runs to
// completion and the driver gets rated.
func runDemo(ctx context.Context, engine *store.Store, session *client.Session, fares *fare.Service, logg *logger.Logger) error {
	customer, err := engine.SignIn(ctx, "23012345@mvula.univen.ac.za", "1234567")
	if err != nil {
		return fmt.Errorf("customer sign-in: %w", err)
	}
	session.LoginSuccess(customer)
	logg.WithUserID(customer.ID).Infof("Signed in as %s", customer.Name)

	driver, err := engine.SignIn(ctx, "23023456@mvula.univen.ac.za", "1234567")
	if err != nil {
		return fmt.Errorf("driver sign-in: %w", err)
	}

	// The demo drives named waypoints only; a free-form address would leave
	// the location simulator idling in place.
	route := routeInput{Pickup: "Thavhani Mall", Dropoff: "Univen Library"}
	if err := validators.ValidateStruct(route); err != nil {
		return fmt.Errorf("route validation: %w", err)
	}
	pickup := route.Pickup
	dropoff := route.Dropoff
	estimate, err := fares.Estimate(ctx, pickup, dropoff, false)
	if err != nil {
		return fmt.Errorf("fare estimate: %w", err)
	}
	logg.Infof("Estimated fare R%.2f (%s)", estimate.Fare, estimate.Reasoning)

	// Driver side: watch the request board.
	cancelRequests := engine.ListenForRideRequests(func(trips []*models.Trip) {
		logg.WithUserID(driver.ID).Infof("Ride request board: %d open", len(trips))
	})
	defer cancelRequests()

	trip, err := engine.RequestTrip(ctx, store.TripRequest{
		CustomerID:    customer.ID,
		CustomerName:  customer.Name,
		Pickup:        pickup,
		Dropoff:       dropoff,
		Fare:          estimate.Fare,
		PaymentMethod: models.PaymentMethodCard,
	})
	if err != nil {
		return fmt.Errorf("request trip: %w", err)
	}
	session.SetTrip(trip)

	if _, err := engine.AcceptTrip(ctx, trip.ID, driver); err != nil {
		return fmt.Errorf("accept trip: %w", err)
	}
	logg.WithTripID(trip.ID).Infof("%s accepted, heading to %s", driver.Name, pickup)

	if _, err := engine.SendMessage(ctx, trip.ID, driver.ID, "On my way!"); err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	// Let the simulator move the driver for a bit before pickup.
	watchDriver(session, logg, 4)

	if _, err := engine.UpdateTripStatus(ctx, trip.ID, models.TripStatusInProgress); err != nil {
		return fmt.Errorf("start trip: %w", err)
	}
	logg.WithTripID(trip.ID).Info("Passenger on board")
	watchDriver(session, logg, 4)

	if _, err := engine.UpdateTripStatus(ctx, trip.ID, models.TripStatusCompleted); err != nil {
		return fmt.Errorf("complete trip: %w", err)
	}
	if err := engine.RateDriver(ctx, trip.ID, driver.ID, 5); err != nil {
		return fmt.Errorf("rate driver: %w", err)
	}
	logg.WithTripID(trip.ID).Info("Trip completed, driver rated 5")

	if err := session.RefreshHistory(ctx); err != nil {
		return fmt.Errorf("refresh history: %w", err)
	}
	for _, past := range session.CachedHistory() {
		logg.Infof("History: trip %s %s -> %s (%s, R%.2f)",
			past.ID, past.PickupLocation, past.DropoffLocation, past.Status, past.Fare)
	}
	return nil
}

// watchDriver reports the driver position from the session's view for a few
// simulator ticks.
func watchDriver(session *client.Session, logg *logger.Logger, ticks int) {
	for i := 0; i < ticks; i++ {
		time.Sleep(2 * time.Second)
		snap := session.Snapshot()
		if snap.CurrentTrip == nil || snap.CurrentTrip.DriverLocation == nil {
			continue
		}
		loc := snap.CurrentTrip.DriverLocation
		logg.WithTripID(snap.CurrentTrip.ID).Infof("Driver at %.4f, %.4f", loc.Lat, loc.Lng)
	}
}
