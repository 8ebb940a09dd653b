package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rollertrack/access-api/internal/core/domain"
)

const accountCollection = "accounts"

// AccountRepository implements ports.AccountRepository on a Mongo collection.
// Updates are conditional on the document version so interleaved
// read-modify-write cycles on the failed-attempt counter cannot lose writes.
type AccountRepository struct {
	coll *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{coll: db.Collection(accountCollection)}
}

type accountDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	EmployeeID     string             `bson:"employee_id"`
	Email          string             `bson:"email"`
	Role           string             `bson:"role"`
	Active         bool               `bson:"active"`
	PasswordHash   string             `bson:"password_hash"`
	PasswordSalt   string             `bson:"password_salt"`
	FailedAttempts int                `bson:"failed_attempts"`
	LockedUntil    *time.Time         `bson:"locked_until,omitempty"`
	Version        int64              `bson:"version"`
	CreatedAt      time.Time          `bson:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at"`
}

func toDoc(a *domain.Account) accountDoc {
	return accountDoc{
		EmployeeID:     a.EmployeeID,
		Email:          a.Email,
		Role:           string(a.Role),
		Active:         a.Active,
		PasswordHash:   a.PasswordHash,
		PasswordSalt:   a.PasswordSalt,
		FailedAttempts: a.FailedAttempts,
		LockedUntil:    a.LockedUntil,
		Version:        a.Version,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func (d accountDoc) toDomain() *domain.Account {
	return &domain.Account{
		ID:             d.ID.Hex(),
		EmployeeID:     d.EmployeeID,
		Email:          d.Email,
		Role:           domain.Role(d.Role),
		Active:         d.Active,
		PasswordHash:   d.PasswordHash,
		PasswordSalt:   d.PasswordSalt,
		FailedAttempts: d.FailedAttempts,
		LockedUntil:    d.LockedUntil,
		Version:        d.Version,
		CreatedAt:      d.CreatedAt.UTC(),
		UpdatedAt:      d.UpdatedAt.UTC(),
	}
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *AccountRepository) FindByEmployeeID(ctx context.Context, employeeID string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"employee_id": employeeID})
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	var doc accountDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *AccountRepository) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"role": string(role)})
	if err != nil {
		return 0, fmt.Errorf("count by role: %w", err)
	}
	return n, nil
}

func (r *AccountRepository) List(ctx context.Context) ([]*domain.Account, error) {
	return r.findAll(ctx, bson.M{})
}

func (r *AccountRepository) Search(ctx context.Context, term string) ([]*domain.Account, error) {
	pattern := primitive.Regex{Pattern: regexQuote(term), Options: "i"}
	filter := bson.M{"$or": bson.A{
		bson.M{"employee_id": pattern},
		bson.M{"email": pattern},
		bson.M{"role": pattern},
	}}
	return r.findAll(ctx, filter)
}

func (r *AccountRepository) findAll(ctx context.Context, filter bson.M) ([]*domain.Account, error) {
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find accounts: %w", err)
	}
	defer cur.Close(ctx)

	var accounts []*domain.Account
	for cur.Next(ctx) {
		var doc accountDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode account: %w", err)
		}
		accounts = append(accounts, doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return accounts, nil
}

func (r *AccountRepository) Insert(ctx context.Context, account *domain.Account) error {
	doc := toDoc(account)
	doc.Version = 1

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return conflictFromIndex(err)
		}
		return fmt.Errorf("insert account: %w", err)
	}

	account.Version = 1
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		account.ID = oid.Hex()
	}
	return nil
}

func (r *AccountRepository) Update(ctx context.Context, account *domain.Account) error {
	oid, err := primitive.ObjectIDFromHex(account.ID)
	if err != nil {
		return fmt.Errorf("update account: bad id %q: %w", account.ID, err)
	}

	set := bson.M{
		"employee_id":     account.EmployeeID,
		"email":           account.Email,
		"role":            string(account.Role),
		"active":          account.Active,
		"password_hash":   account.PasswordHash,
		"password_salt":   account.PasswordSalt,
		"failed_attempts": account.FailedAttempts,
		"locked_until":    account.LockedUntil,
		"updated_at":      account.UpdatedAt,
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "version": account.Version},
		bson.M{"$set": set, "$inc": bson.M{"version": 1}},
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return conflictFromIndex(err)
		}
		return fmt.Errorf("update account: %w", err)
	}
	if res.MatchedCount == 0 {
		// Either the document is gone or a concurrent writer bumped the
		// version between our read and this write.
		if _, findErr := r.findOne(ctx, bson.M{"_id": oid}); errors.Is(findErr, domain.ErrAccountNotFound) {
			return domain.ErrAccountNotFound
		}
		return domain.ErrVersionConflict
	}

	account.Version++
	return nil
}

func (r *AccountRepository) Delete(ctx context.Context, employeeID string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"employee_id": employeeID})
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// conflictFromIndex maps a duplicate-key error to the colliding field using
// the index names created in EnsureIndexes.
func conflictFromIndex(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "email_unique"):
		return &domain.ConflictError{Field: "email"}
	case strings.Contains(msg, "employee_id_unique"):
		return &domain.ConflictError{Field: "employee_id"}
	case strings.Contains(msg, "super_admin_singleton"):
		return &domain.ConflictError{Field: "role", Message: "a super admin account already exists"}
	default:
		return &domain.ConflictError{Field: "record"}
	}
}

func regexQuote(s string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`, `.`, `\.`, `+`, `\+`, `*`, `\*`, `?`, `\?`,
		`(`, `\(`, `)`, `\)`, `[`, `\[`, `]`, `\]`, `{`, `\{`, `}`, `\}`,
		`^`, `\^`, `$`, `\$`, `|`, `\|`,
	)
	return replacer.Replace(s)
}
