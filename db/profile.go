package db

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gvidela/limitereal/limit"
)

// profileID is the _id of the single stored record. The app serves one
// implicit user, so the collection holds at most one document.
const profileID = "profile"

// profileDoc is the stored shape of a profile. Amounts are plain decimal
// numbers in the document; they are converted to limit's decimal type at
// this boundary.
type profileDoc struct {
	ID                 string       `bson:"_id" json:"-"`
	TotalLimit         float64      `bson:"total_limit" json:"total_limit"`
	MonthSpend         float64      `bson:"month_spend" json:"month_spend"`
	ActiveInstallments float64      `bson:"active_installments" json:"active_installments"`
	ClosingDay         int          `bson:"closing_day" json:"closing_day"`
	TodayExpenses      []expenseDoc `bson:"today_expenses" json:"today_expenses"`
}

type expenseDoc struct {
	ID         string    `bson:"id" json:"id"`
	Amount     float64   `bson:"amount" json:"amount"`
	RecordedAt time.Time `bson:"recorded_at" json:"recorded_at"`
}

func docFromProfile(p limit.Profile) profileDoc {
	doc := profileDoc{
		ID:                 profileID,
		TotalLimit:         p.TotalLimit.InexactFloat64(),
		MonthSpend:         p.MonthSpend.InexactFloat64(),
		ActiveInstallments: p.ActiveInstallments.InexactFloat64(),
		ClosingDay:         p.ClosingDay,
	}
	for _, e := range p.TodayExpenses {
		doc.TodayExpenses = append(doc.TodayExpenses, expenseDoc{
			ID:         e.ID,
			Amount:     e.Amount.InexactFloat64(),
			RecordedAt: e.RecordedAt,
		})
	}
	return doc
}

func (doc profileDoc) toProfile() limit.Profile {
	p := limit.Profile{
		TotalLimit:         decimal.NewFromFloat(doc.TotalLimit),
		MonthSpend:         decimal.NewFromFloat(doc.MonthSpend),
		ActiveInstallments: decimal.NewFromFloat(doc.ActiveInstallments),
		ClosingDay:         doc.ClosingDay,
	}
	for _, e := range doc.TodayExpenses {
		p.TodayExpenses = append(p.TodayExpenses, limit.Expense{
			ID:         e.ID,
			Amount:     decimal.NewFromFloat(e.Amount),
			RecordedAt: e.RecordedAt,
		})
	}
	return p
}

func getProfileRepo(mngDB *mongo.Database) *ProfileRepo {
	return &ProfileRepo{c: mngDB.Collection("profile")}
}

// ProfileRepo stores the single profile record in mongo.
type ProfileRepo struct {
	c *mongo.Collection
}

// Get returns the stored profile or limit.ErrNotFound.
func (r *ProfileRepo) Get(ctx context.Context) (limit.Profile, error) {
	filter := bson.M{"_id": profileID}
	res := r.c.FindOne(ctx, filter)
	if err := res.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return limit.Profile{}, limit.ErrNotFound
		}
		return limit.Profile{}, err
	}

	var doc profileDoc
	if err := res.Decode(&doc); err != nil {
		return limit.Profile{}, err
	}

	return doc.toProfile(), nil
}

// Save upserts the profile record.
func (r *ProfileRepo) Save(ctx context.Context, p limit.Profile) error {
	doc := docFromProfile(p)

	filter := bson.M{"_id": doc.ID}
	upd := bson.M{"$set": doc}
	upsert := true
	opts := &options.UpdateOptions{Upsert: &upsert}

	_, err := r.c.UpdateOne(ctx, filter, upd, opts)
	return err
}
