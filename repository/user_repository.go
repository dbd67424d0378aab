package repository

import (
	"database/sql"
	"fmt"
	"time"

	"KaraFM/db"
	"KaraFM/model"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	CreateUser(user *model.User) (int64, error)
	GetUserByID(id int64) (*model.User, error)
	GetUserByUsername(username string) (*model.User, error)
	GetUserByEmail(email string) (*model.User, error)
	UpdateProfile(id int64, avatarURL, bio string) error
	AllAvatarURLs() ([]string, error)
}

// mysqlUserRepository implements UserRepository for MySQL.
type mysqlUserRepository struct {
	DB *sql.DB
}

// NewMySQLUserRepository creates a new instance of mysqlUserRepository.
func NewMySQLUserRepository(database *sql.DB) UserRepository {
	if database == nil {
		database = db.DB
	}
	return &mysqlUserRepository{DB: database}
}

// CreateUser adds a new user to the database.
func (r *mysqlUserRepository) CreateUser(user *model.User) (int64, error) {
	query := `INSERT INTO users (username, email, password_hash, avatar_url, bio, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	stmt, err := r.DB.Prepare(query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement for CreateUser: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	res, err := stmt.Exec(user.Username, user.Email, user.PasswordHash, user.AvatarURL, user.Bio, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to execute CreateUser: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for CreateUser: %w", err)
	}
	return id, nil
}

const userColumns = `id, username, email, password_hash, avatar_url, bio, created_at, updated_at`

func scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	var bio sql.NullString
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.AvatarURL, &bio, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // user not found
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	user.Bio = bio.String
	return user, nil
}

// GetUserByID retrieves a user by its ID.
func (r *mysqlUserRepository) GetUserByID(id int64) (*model.User, error) {
	row := r.DB.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByUsername retrieves a user by username.
func (r *mysqlUserRepository) GetUserByUsername(username string) (*model.User, error) {
	row := r.DB.QueryRow(`SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return scanUser(row)
}

// GetUserByEmail retrieves a user by email.
func (r *mysqlUserRepository) GetUserByEmail(email string) (*model.User, error) {
	row := r.DB.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

// AllAvatarURLs returns every avatar URL in use. Consumed by the orphan
// sweep.
func (r *mysqlUserRepository) AllAvatarURLs() ([]string, error) {
	rows, err := r.DB.Query(`SELECT avatar_url FROM users WHERE avatar_url <> ''`)
	if err != nil {
		return nil, fmt.Errorf("failed to query avatar urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan avatar url: %w", err)
		}
		urls = append(urls, url)
	}
	return urls, rows.Err()
}

// UpdateProfile updates the mutable profile fields.
func (r *mysqlUserRepository) UpdateProfile(id int64, avatarURL, bio string) error {
	query := `UPDATE users SET avatar_url = ?, bio = ?, updated_at = ? WHERE id = ?`
	if _, err := r.DB.Exec(query, avatarURL, bio, time.Now(), id); err != nil {
		return fmt.Errorf("failed to execute UpdateProfile for user %d: %w", id, err)
	}
	return nil
}
