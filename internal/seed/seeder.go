package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/soumyacodes007/social-media-backend/internal/chat"
	"github.com/soumyacodes007/social-media-backend/internal/database"
	"github.com/soumyacodes007/social-media-backend/internal/logger"
	"github.com/soumyacodes007/social-media-backend/internal/models"
	"github.com/soumyacodes007/social-media-backend/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db     *gorm.DB
	repos  *repository.Repositories
	router *chat.Router
	now    func() time.Time
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	_ = gofakeit.Seed(time.Now().UnixNano())
	repos := repository.New(database.Static(db))
	return &Seeder{
		db:     db,
		repos:  repos,
		router: chat.NewRouter(repos.Chats),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Counts sizes one seeding run
type Counts struct {
	Users    int
	Posts    int
	Comments int
	Chats    int
	Messages int
	Notes    int
	Stories  int
}

// DevCounts is the size of the development data set
var DevCounts = Counts{Users: 50, Posts: 120, Comments: 300, Chats: 40, Messages: 8, Notes: 20, Stories: 30}

// SeedDev seeds the development database with realistic data
func (s *Seeder) SeedDev(ctx context.Context) error {
	return s.Seed(ctx, DevCounts)
}

// testUsers are stable accounts for manual and end-to-end testing
var testUsers = []struct {
	phone string
	name  string
}{
	{"5550000001", "Alice Smith"},
	{"5550000002", "Bob Johnson"},
	{"5550000003", "Charlie Brown"},
	{"5550000004", "Diana Prince"},
	{"5550000005", "Eve Wilson"},
}

// SeedTest seeds the fixed test accounts with a small amount of content
func (s *Seeder) SeedTest(ctx context.Context) error {
	logger.Log.Info("Creating test users...")
	users := make([]models.User, 0, len(testUsers))
	for _, tu := range testUsers {
		user, err := s.ensureUser(ctx, tu.phone, tu.name)
		if err != nil {
			return fmt.Errorf("failed to create test user %s: %w", tu.phone, err)
		}
		users = append(users, *user)
	}

	logger.Log.Info("Creating test content...")
	return s.seedContent(ctx, users, Counts{Posts: 5, Comments: 10, Chats: 4, Messages: 3, Notes: 2, Stories: 3})
}

// Seed creates counts.Users fake users and content between them
func (s *Seeder) Seed(ctx context.Context, counts Counts) error {
	logger.Log.Info("Creating users...", zap.Int("count", counts.Users))
	users, err := s.seedUsers(ctx, counts.Users)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	return s.seedContent(ctx, users, counts)
}

func (s *Seeder) seedContent(ctx context.Context, users []models.User, counts Counts) error {
	if len(users) < 2 {
		return fmt.Errorf("at least two users are needed, have %d", len(users))
	}

	logger.Log.Info("Creating follows...")
	if err := s.seedFollows(ctx, users); err != nil {
		return fmt.Errorf("failed to seed follows: %w", err)
	}

	logger.Log.Info("Creating posts...", zap.Int("count", counts.Posts))
	posts, err := s.seedPosts(ctx, users, counts.Posts)
	if err != nil {
		return fmt.Errorf("failed to seed posts: %w", err)
	}

	logger.Log.Info("Creating comments and likes...", zap.Int("comments", counts.Comments))
	if err := s.seedEngagement(ctx, users, posts, counts.Comments); err != nil {
		return fmt.Errorf("failed to seed engagement: %w", err)
	}

	logger.Log.Info("Creating chats...", zap.Int("chats", counts.Chats))
	if err := s.seedChats(ctx, users, counts.Chats, counts.Messages); err != nil {
		return fmt.Errorf("failed to seed chats: %w", err)
	}

	logger.Log.Info("Creating notes and stories...")
	if err := s.seedEphemeral(ctx, users, counts.Notes, counts.Stories); err != nil {
		return fmt.Errorf("failed to seed notes and stories: %w", err)
	}
	return nil
}

// Clean removes every row of every table (use with caution!)
func (s *Seeder) Clean(ctx context.Context) error {
	all := models.All()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := len(all) - 1; i >= 0; i-- {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(all[i]).Error; err != nil {
				return fmt.Errorf("failed to clean %T: %w", all[i], err)
			}
		}
		return nil
	})
}

func (s *Seeder) ensureUser(ctx context.Context, phone, name string) (*models.User, error) {
	user, err := s.repos.Users.Ensure(ctx, phone)
	if err != nil {
		return nil, err
	}
	if user.Name == "" && name != "" {
		if err := s.db.WithContext(ctx).Model(user).Update("name", name).Error; err != nil {
			return nil, err
		}
		user.Name = name
	}
	return user, nil
}

// seedUsers creates users with sequential 555 phone numbers
func (s *Seeder) seedUsers(ctx context.Context, count int) ([]models.User, error) {
	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		phone := fmt.Sprintf("555%07d", 1000+i)
		user, err := s.ensureUser(ctx, phone, gofakeit.Name())
		if err != nil {
			return nil, err
		}
		if rand.Float32() < 0.3 {
			user, err = s.repos.Users.SetPresence(ctx, phone, true, s.now())
			if err != nil {
				return nil, err
			}
		}
		users = append(users, *user)
	}
	return users, nil
}

// seedFollows gives every user up to five random follows
func (s *Seeder) seedFollows(ctx context.Context, users []models.User) error {
	for _, follower := range users {
		for _, target := range pick(users, 1+rand.Intn(min(5, len(users)-1))) {
			if target.Phone == follower.Phone {
				continue
			}
			already, err := s.repos.Users.IsFollowing(ctx, follower.Phone, target.Phone)
			if err != nil {
				return err
			}
			if already {
				continue
			}
			if _, err := s.repos.Users.ToggleFollow(ctx, follower.Phone, target.Phone); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Seeder) seedPosts(ctx context.Context, users []models.User, count int) ([]models.Post, error) {
	posts := make([]models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := users[rand.Intn(len(users))]
		username := gofakeit.Username()
		post := models.Post{
			Username:       username,
			UserProfileURL: fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/png?seed=%s", username),
			ImageURL:       fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID()),
			Caption:        gofakeit.HipsterSentence(),
			Name:           author.Name,
			Bio:            gofakeit.HipsterSentence(),
			Interests:      gofakeit.Word(),
			Website:        fmt.Sprintf("https://%s.example.com", username),
			Music:          gofakeit.Word(),
			Phone:          author.Phone,
			Email:          gofakeit.Email(),
			Gender:         []string{"female", "male", "other"}[rand.Intn(3)],
		}
		if err := post.SetPassword("password123"); err != nil {
			return nil, err
		}
		if err := s.repos.Posts.Create(ctx, &post); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (s *Seeder) seedEngagement(ctx context.Context, users []models.User, posts []models.Post, comments int) error {
	if len(posts) == 0 {
		return nil
	}
	for i := 0; i < comments; i++ {
		comment := models.Comment{
			PostID:  posts[rand.Intn(len(posts))].ID,
			UserID:  users[rand.Intn(len(users))].Phone,
			Comment: gofakeit.HipsterSentence(),
		}
		if err := s.repos.Engagement.CreateComment(ctx, &comment); err != nil {
			return err
		}
	}
	for _, post := range posts {
		for _, user := range pick(users, rand.Intn(min(10, len(users)))) {
			if _, _, err := s.repos.Engagement.ToggleLike(ctx, post.ID, user.Phone); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Seeder) seedChats(ctx context.Context, users []models.User, chats, messages int) error {
	for i := 0; i < chats; i++ {
		pair := pick(users, 2)
		a, b := pair[0].Phone, pair[1].Phone
		for j := 0; j < messages; j++ {
			sender := a
			if j%2 == 1 {
				sender = b
			}
			if _, err := s.router.AppendMessage(ctx, a, b, sender, gofakeit.HipsterSentence()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Seeder) seedEphemeral(ctx context.Context, users []models.User, notes, stories int) error {
	now := s.now()
	for i := 0; i < notes; i++ {
		note := models.Note{
			Name:      users[rand.Intn(len(users))].Name,
			Text:      gofakeit.HipsterSentence(),
			ExpiresAt: now.Add(models.NoteTTL),
		}
		if err := s.repos.Notes.Create(ctx, &note); err != nil {
			return err
		}
	}
	for i := 0; i < stories; i++ {
		story := models.Story{
			UserID:    users[rand.Intn(len(users))].Phone,
			ExpiresAt: gofakeit.DateRange(now, now.Add(models.StoryTTL)),
		}
		if i%2 == 0 {
			story.Type = models.StoryTypeText
			story.MediaURL = gofakeit.HipsterSentence()
		} else {
			story.Type = models.StoryTypeImage
			story.MediaURL = fmt.Sprintf("https://picsum.photos/seed/%s/1080/1920", gofakeit.UUID())
		}
		if err := s.repos.Stories.Create(ctx, &story); err != nil {
			return err
		}
	}
	return nil
}

// pick returns n distinct random users
func pick(users []models.User, n int) []models.User {
	if n > len(users) {
		n = len(users)
	}
	out := make([]models.User, 0, n)
	for _, i := range rand.Perm(len(users))[:n] {
		out = append(out, users[i])
	}
	return out
}
