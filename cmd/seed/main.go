package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"gigbook/internal/app"
	"gigbook/internal/config"
	"gigbook/internal/database"
	"gigbook/internal/domain/notification"
	"gigbook/internal/domain/verification"
	jwtsvc "gigbook/internal/pkg/jwt"
	"gigbook/internal/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type seedUser struct {
	label   string
	profile verification.Profile
	banks   int
	kyc     *verification.VerificationRecord
	prefs   *notification.Preferences
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.IsProdLike() {
		log.Fatal("refusing to seed a production database")
	}

	lg, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL, lg)
	if err != nil {
		lg.Fatal("DB connection failed", zap.Error(err))
	}

	lg.Info("running migrations")
	if err := database.Migrate(db); err != nil {
		lg.Fatal("migration failed", zap.Error(err))
	}

	// Cleanup old data
	lg.Info("cleaning old data")
	for _, table := range []string{"notifications", "notification_logs", "notification_preferences", "device_tokens", "verification_records", "bank_accounts", "profiles"} {
		db.Exec("DELETE FROM " + table)
	}

	users := []seedUser{
		{
			label: "verified musician",
			profile: verification.Profile{
				Role: string(verification.RoleMusician), Bio: "Jazz pianist, 12 years of club gigs.",
				PrimaryRole: "Pianist", Genres: []string{"jazz", "soul"}, AvatarURL: "https://picsum.photos/seed/piano/200",
				Email: "ana@gigbook.dev", Phone: "+15550100001", EmailVerified: true, IsVerified: true,
			},
			banks: 1,
			kyc:   &verification.VerificationRecord{IDFrontImageURL: "https://picsum.photos/seed/id1/400", SelfieImageURL: "https://picsum.photos/seed/s1/400", Status: verification.KYCApproved},
			prefs: &notification.Preferences{EmailEnabled: true, PushEnabled: true, SMSEnabled: true, PhoneNumber: "+15550100001"},
		},
		{
			label: "musician in review",
			profile: verification.Profile{
				Role: string(verification.RoleMusician), Bio: "Session bassist.", PrimaryRole: "Bassist",
				Genres: []string{"funk"}, AvatarURL: "https://picsum.photos/seed/bass/200",
				Email: "sam@gigbook.dev", EmailVerified: true,
			},
			banks: 1,
			kyc:   &verification.VerificationRecord{IDFrontImageURL: "https://picsum.photos/seed/id2/400", Status: verification.KYCPending},
			prefs: &notification.Preferences{
				EmailEnabled:         true,
				PushEnabled:          true,
				BookingNotifications: notification.ChannelOverrides{notification.ChannelPush: false},
				QuietHoursEnabled:    true,
				QuietHoursStart:      "22:00",
				QuietHoursEnd:        "08:00",
			},
		},
		{
			label: "new musician",
			profile: verification.Profile{
				Role: string(verification.RoleMusician), PrimaryRole: "Drummer", Email: "lee@gigbook.dev",
			},
		},
		{
			label: "client",
			profile: verification.Profile{
				Role: string(verification.RoleClient), Email: "events@venue.dev", Phone: "+15550100009", EmailVerified: true,
			},
		},
	}

	j := jwtsvc.New(cfg.JWTSecret, 30*24*time.Hour)
	for i := range users {
		u := &users[i]
		u.profile.UserID = uuid.NewString()
		if err := seed(db, u); err != nil {
			lg.Fatal("seed failed", zap.String("user", u.label), zap.Error(err))
		}
		token, _ := j.GenerateToken(u.profile.UserID, u.profile.Role)
		fmt.Printf("%-20s %s\n  token: %s\n", u.label, u.profile.UserID, token)
	}

	gate := verification.NewGate(
		verification.NewProfileRepository(db),
		verification.NewBankAccountRepository(db),
		verification.NewKYCRepository(db),
		cfg.VerificationFetchTimeout,
		lg,
	)
	for i := range users {
		tr := gate.Tracker(users[i].profile.UserID)
		st := tr.Refresh(context.Background())
		fmt.Printf("%-20s status=%s can_apply=%t\n", users[i].label, st.Status, tr.Allow(false))
	}

	dispatcher, err := app.NewDispatcher(context.Background(), cfg, db, nil, lg)
	if err != nil {
		lg.Fatal("dispatcher setup failed", zap.Error(err))
	}
	notifier := notification.NewNotifier(syncSubmitter{dispatcher})

	ctx := context.Background()
	musician, client := users[0].profile.UserID, users[3].profile.UserID
	bookingID := uuid.NewString()
	notifier.BookingCreated(ctx, musician, bookingID, "Riverside Venue", time.Now().AddDate(0, 0, 14))
	notifier.BookingConfirmed(ctx, client, bookingID, "Ana")
	notifier.PaymentReceived(ctx, musician, bookingID, 45000, "USD")
	notifier.MessageReceived(ctx, users[1].profile.UserID, uuid.NewString(), "Riverside Venue", "Can you do a soundcheck at 6?")

	lg.Info("seed completed", zap.Int("users", len(users)))
}

func seed(db *gorm.DB, u *seedUser) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&u.profile).Error; err != nil {
			return err
		}
		for i := 0; i < u.banks; i++ {
			acct := verification.BankAccount{UserID: u.profile.UserID, LastFour: fmt.Sprintf("%04d", 4242+i), IsActive: true}
			if err := tx.Create(&acct).Error; err != nil {
				return err
			}
		}
		if u.kyc != nil {
			u.kyc.UserID = u.profile.UserID
			if err := tx.Create(u.kyc).Error; err != nil {
				return err
			}
		}
		if u.prefs != nil {
			u.prefs.UserID = u.profile.UserID
			if err := tx.Create(u.prefs).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// syncSubmitter runs deliveries inline so the process does not exit before
// they finish.
type syncSubmitter struct {
	d *notification.Dispatcher
}

func (s syncSubmitter) Submit(ctx context.Context, ev notification.Event) {
	s.d.Send(ctx, ev)
}
