package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"pawhome_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	Dynamo DynamoAPI
}

// ErrEmailTaken is returned by Register when the email already has an account.
var ErrEmailTaken = errors.New("email already registered")

// ErrBadCredentials is returned by Authenticate for a wrong email or password.
var ErrBadCredentials = errors.New("invalid email or password")

func userKey(userID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}
}

// Register creates a user with a bcrypt-hashed password. Role must be one
// of the two participant kinds.
func (us *UserService) Register(ctx context.Context, email, password string, role models.Role, firstName, lastName, centerName string) (*models.User, error) {
	if role != models.RoleAdopter && role != models.RoleAdoptionCenter {
		return nil, fmt.Errorf("unknown role %q", role)
	}

	existing, err := us.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		UserID:             uuid.New().String(),
		Email:              email,
		PasswordHash:       string(hash),
		Role:               role,
		FirstName:          firstName,
		LastName:           lastName,
		AdoptionCenterName: centerName,
		CreatedAt:          time.Now().Format(time.RFC3339),
	}

	sctx, cancel := storeContext(ctx)
	defer cancel()
	if err := us.Dynamo.PutItem(sctx, models.UsersTable, user); err != nil {
		return nil, translateStoreErr(err)
	}

	log.Printf("Registered %s account for %s", role, email)
	return &user, nil
}

// Authenticate verifies the password for the account behind email.
func (us *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := us.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}
	return user, nil
}

// GetUser retrieves a user by ID
func (us *UserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	ctx, cancel := storeContext(ctx)
	defer cancel()
	item, err := us.Dynamo.GetItem(ctx, models.UsersTable, userKey(userID))
	if err != nil {
		return nil, translateStoreErr(err)
	}

	var user models.User
	if err := attributevalue.UnmarshalMap(item, &user); err != nil {
		return nil, fmt.Errorf("failed to parse user: %w", err)
	}
	return &user, nil
}

// FindByEmail scans the Users table for a matching email.
func (us *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := storeContext(ctx)
	defer cancel()
	items, err := us.Dynamo.ScanItems(ctx, models.UsersTable,
		"email = :email",
		map[string]types.AttributeValue{
			":email": &types.AttributeValueMemberS{Value: email},
		}, nil)
	if err != nil {
		return nil, translateStoreErr(err)
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}

	var user models.User
	if err := attributevalue.UnmarshalMap(items[0], &user); err != nil {
		return nil, fmt.Errorf("failed to parse user: %w", err)
	}
	return &user, nil
}

// UpdateProfile overwrites the mutable display fields and returns the
// stored user. The caller is responsible for refreshing any live session
// snapshot afterwards.
func (us *UserService) UpdateProfile(ctx context.Context, userID string, firstName, lastName, centerName, profilePhoto string) (*models.User, error) {
	user, err := us.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.FirstName = firstName
	user.LastName = lastName
	user.AdoptionCenterName = centerName
	user.ProfilePhoto = profilePhoto

	sctx, cancel := storeContext(ctx)
	defer cancel()
	if err := us.Dynamo.PutItem(sctx, models.UsersTable, user); err != nil {
		return nil, translateStoreErr(err)
	}
	return user, nil
}

// SetPassword re-hashes and stores a new password (reset flow).
func (us *UserService) SetPassword(ctx context.Context, userID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	ctx, cancel := storeContext(ctx)
	defer cancel()
	_, err = us.Dynamo.UpdateItem(ctx, models.UsersTable,
		"SET passwordHash = :hash",
		userKey(userID),
		map[string]types.AttributeValue{
			":hash": &types.AttributeValueMemberS{Value: string(hash)},
		}, nil)
	return translateStoreErr(err)
}
