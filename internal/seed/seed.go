// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"craftery/internal/middleware"
	"craftery/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Categories are the craft categories demo posts are spread across.
var Categories = []string{
	"paper", "pottery", "wood", "yarn", "jewelry", "wax", "textile", "glass",
}

var materials = []string{
	"cardstock", "air-dry clay", "pine board", "merino wool", "copper wire",
	"soy wax", "linen", "stained glass offcuts", "acrylic paint", "wood glue",
	"embroidery floss", "beads", "epoxy resin", "felt",
}

// Options configure a seeding run.
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// Seeder populates the database with demo accounts, posts, and favorites.
type Seeder struct {
	db *gorm.DB
	r  *rand.Rand
}

func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db: db,
		r:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll removes all seeded data. Favorites go first so no favorite ever
// points at a missing row.
func (s *Seeder) ClearAll() error {
	for _, model := range []interface{}{&models.Favorite{}, &models.Post{}, &models.User{}} {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return fmt.Errorf("failed to clear table: %w", err)
		}
	}
	return nil
}

// CreateUser persists a demo user. All demo accounts share the password
// "CorrectHorse9!" so they are easy to log in as.
func (s *Seeder) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("CorrectHorse9!"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
		Password: string(hashed),
	}
	for _, override := range overrides {
		override(user)
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePost persists a demo craft post owned by the given user, with a
// created_at spread over the last 90 days.
func (s *Seeder) CreatePost(user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	category := Categories[s.r.Intn(len(Categories))]

	post := &models.Post{
		Title:        gofakeit.Sentence(4),
		Category:     category,
		Description:  gofakeit.Paragraph(1, 3, 8, " "),
		Materials:    s.pickMaterials(),
		Instructions: gofakeit.Paragraph(2, 4, 10, "\n"),
		ImageURL:     fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID()),
		UserID:       user.ID,
		CreatedAt:    time.Now().Add(-time.Duration(s.r.Intn(90*24)) * time.Hour),
	}
	for _, override := range overrides {
		override(post)
	}

	if err := s.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

func (s *Seeder) pickMaterials() string {
	n := 2 + s.r.Intn(3)
	picked := make([]string, 0, n)
	for _, i := range s.r.Perm(len(materials))[:n] {
		picked = append(picked, materials[i])
	}
	out := picked[0]
	for _, m := range picked[1:] {
		out += ", " + m
	}
	return out
}

// Run seeds users, posts, and a favorites mesh where each user favorites a
// random slice of other users' posts.
func (s *Seeder) Run(opts Options) error {
	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return err
		}
	}

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := s.CreateUser()
		if err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
		users = append(users, user)
	}

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		owner := users[s.r.Intn(len(users))]
		post, err := s.CreatePost(owner)
		if err != nil {
			return fmt.Errorf("failed to seed post: %w", err)
		}
		posts = append(posts, post)
	}

	favorites := 0
	for _, user := range users {
		for _, post := range posts {
			// ~10% favorite rate, never on own posts
			if post.UserID == user.ID || s.r.Intn(10) != 0 {
				continue
			}
			fav := &models.Favorite{UserID: user.ID, PostID: post.ID}
			if err := s.db.Create(fav).Error; err != nil {
				return fmt.Errorf("failed to seed favorite: %w", err)
			}
			favorites++
		}
	}

	middleware.Logger.Info("seeding complete",
		"users", len(users), "posts", len(posts), "favorites", favorites)
	return nil
}
