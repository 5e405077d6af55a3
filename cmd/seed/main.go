package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"marketplace-entitlements/internal/config"
	"marketplace-entitlements/internal/domain/model"
	pg "marketplace-entitlements/internal/infra/db/postgres"
)

// Seeds a handful of demo accounts covering the main entitlement states so
// the gates and resolvers can be exercised against a fresh database.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	profileRepo := pg.NewProfileRepo(pool)
	subRepo := pg.NewSubscriptionRepo(pool)
	vendorRepo := pg.NewVendorRepo(pool)
	verificationRepo := pg.NewVerificationRepo(pool)

	// Do nothing if demo data already exists.
	if existing, err := profileRepo.FindByUser(ctx, nil, "demo-consumer-plus"); err == nil && existing != nil {
		fmt.Println("demo accounts already present. No changes.")
		return
	}

	now := time.Now().UTC()
	periodEnd := now.AddDate(0, 1, 0)

	seeds := []struct {
		userID  string
		email   string
		name    string
		status  model.SubscriptionStatus
		planKey string
		onboard bool
	}{
		{"demo-consumer-new", "new@example.com", "New Consumer", model.SubscriptionStatusNone, "", false},
		{"demo-consumer-starter", "starter@example.com", "Starter Consumer", model.SubscriptionStatusActive, model.PlanKey(model.PlanFamilyConsumer, model.TierStarter, model.IntervalMonth), true},
		{"demo-consumer-plus", "plus@example.com", "Plus Consumer", model.SubscriptionStatusTrialing, model.PlanKey(model.PlanFamilyConsumer, model.TierPlus, model.IntervalMonth), true},
		{"demo-consumer-lapsed", "lapsed@example.com", "Lapsed Consumer", model.SubscriptionStatusPastDue, model.PlanKey(model.PlanFamilyConsumer, model.TierVIP, model.IntervalYear), true},
	}

	for _, s := range seeds {
		p := &model.Profile{
			UserID:      s.userID,
			Email:       s.email,
			DisplayName: s.name,
			CreatedAt:   now,
		}
		if s.onboard {
			p.OnboardingCompletedAt = &now
		}
		if err := profileRepo.Save(ctx, nil, p); err != nil {
			log.Fatalf("save profile %s: %v", s.userID, err)
		}
		if s.status != model.SubscriptionStatusNone {
			sub := &model.Subscription{
				UserID:           s.userID,
				Status:           s.status,
				PlanKey:          s.planKey,
				CurrentPeriodEnd: &periodEnd,
				UpdatedAt:        now,
			}
			if err := subRepo.Save(ctx, nil, sub); err != nil {
				log.Fatalf("save subscription %s: %v", s.userID, err)
			}
		}
		fmt.Printf("seeded consumer %s (status=%s plan=%s)\n", s.userID, s.status, s.planKey)
	}

	// One fully onboarded vendor on the Pro plan, one mid-onboarding.
	vendors := []struct {
		ownerID  string
		status   model.SubscriptionStatus
		planKey  string
		complete bool
		products int
	}{
		{"demo-vendor-pro", model.SubscriptionStatusActive, model.PlanKey(model.PlanFamilyVendor, model.TierPro, model.IntervalMonth), true, 42},
		{"demo-vendor-pending", model.SubscriptionStatusNone, "", false, 0},
	}
	for _, v := range vendors {
		vendor := &model.Vendor{
			ID:           uuid.NewString(),
			OwnerID:      v.ownerID,
			Status:       v.status,
			PlanKey:      v.planKey,
			ProductCount: v.products,
			CreatedAt:    now,
		}
		if v.complete {
			vendor.OnboardingCompletedAt = &now
			vendor.TermsAcceptedAt = &now
			vendor.ComplianceAcknowledgedAt = &now
		}
		if err := vendorRepo.Save(ctx, nil, vendor); err != nil {
			log.Fatalf("save vendor %s: %v", v.ownerID, err)
		}
		fmt.Printf("seeded vendor %s (status=%s plan=%s onboarded=%t)\n", v.ownerID, v.status, v.planKey, v.complete)
	}

	// An approved identity check for the Plus consumer so gated market
	// content is reachable out of the box.
	rec, err := model.NewVerificationRecord(uuid.NewString(), "demo-consumer-plus")
	if err != nil {
		log.Fatalf("new verification: %v", err)
	}
	if err := rec.Review(true, "seeded approval"); err != nil {
		log.Fatalf("review verification: %v", err)
	}
	if err := verificationRepo.Save(ctx, nil, rec); err != nil {
		log.Fatalf("save verification: %v", err)
	}
	fmt.Println("seeded approved verification for demo-consumer-plus")

	fmt.Println("seeding complete.")
}
