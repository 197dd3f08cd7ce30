package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/magazine-flow-api/internal/models"
	appErrors "github.com/noah-isme/magazine-flow-api/pkg/errors"
)

var errInjected = errors.New("injected failure")

// memDB is an in-memory datastore shared by the stub repositories below.
type memDB struct {
	mu   sync.Mutex
	txMu sync.Mutex

	users         map[string]models.User
	tasks         map[string]models.Task
	history       []models.TaskHistory
	notifications []models.Notification
	articles      map[string]models.CXOArticle
	annotations   []models.CXOArticleAnnotation
	articleFiles  []models.CXOArticleFile
	taskFiles     map[string]models.TaskFile
	brands        map[string]models.Brand
	editions      map[string]models.Edition
	ads           map[string]models.Ad
	seq           int

	failNotifications bool
	onLock            func(task *models.Task)
}

func newMemDB() *memDB {
	return &memDB{
		users:     map[string]models.User{},
		tasks:     map[string]models.Task{},
		articles:  map[string]models.CXOArticle{},
		taskFiles: map[string]models.TaskFile{},
		ads:       map[string]models.Ad{},
		brands:    map[string]models.Brand{"brand-1": {ID: "brand-1", Name: "CIO Review"}},
		editions: map[string]models.Edition{
			"ed-1": {ID: "ed-1", BrandID: "brand-1", Name: "March 2024"},
			"ed-2": {ID: "ed-2", BrandID: "brand-1", Name: "April 2024"},
		},
	}
}

// nextID must be called with mu held.
func (db *memDB) nextID(prefix string) string {
	db.seq++
	return fmt.Sprintf("%s-%d", prefix, db.seq)
}

type memSnapshot struct {
	tasks         map[string]models.Task
	history       []models.TaskHistory
	notifications []models.Notification
	articles      map[string]models.CXOArticle
	annotations   []models.CXOArticleAnnotation
	articleFiles  []models.CXOArticleFile
	taskFiles     map[string]models.TaskFile
}

func (db *memDB) snapshot() memSnapshot {
	db.mu.Lock()
	defer db.mu.Unlock()
	snap := memSnapshot{
		tasks:         make(map[string]models.Task, len(db.tasks)),
		history:       append([]models.TaskHistory(nil), db.history...),
		notifications: append([]models.Notification(nil), db.notifications...),
		articles:      make(map[string]models.CXOArticle, len(db.articles)),
		annotations:   append([]models.CXOArticleAnnotation(nil), db.annotations...),
		articleFiles:  append([]models.CXOArticleFile(nil), db.articleFiles...),
		taskFiles:     make(map[string]models.TaskFile, len(db.taskFiles)),
	}
	for k, v := range db.tasks {
		snap.tasks[k] = v
	}
	for k, v := range db.articles {
		snap.articles[k] = v
	}
	for k, v := range db.taskFiles {
		snap.taskFiles[k] = v
	}
	return snap
}

func (db *memDB) restore(snap memSnapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.tasks = snap.tasks
	db.history = snap.history
	db.notifications = snap.notifications
	db.articles = snap.articles
	db.annotations = snap.annotations
	db.articleFiles = snap.articleFiles
	db.taskFiles = snap.taskFiles
}

func (db *memDB) addUser(u models.User) *models.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, len(db.users), time.UTC)
	}
	db.users[u.ID] = u
	return &u
}

func (db *memDB) task(id string) models.Task {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.tasks[id]
}

func (db *memDB) article(id string) models.CXOArticle {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.articles[id]
}

func (db *memDB) historyOf(taskID string) []models.TaskHistory {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []models.TaskHistory
	for _, h := range db.history {
		if h.TaskID == taskID {
			out = append(out, h)
		}
	}
	return out
}

func (db *memDB) notificationsFor(userID string) []models.Notification {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []models.Notification
	for _, n := range db.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

// memTx serializes units of work and rolls the store back when one fails.
type memTx struct{ db *memDB }

func (t memTx) WithinTx(ctx context.Context, fn func(exec sqlx.ExtContext) error) error {
	t.db.txMu.Lock()
	defer t.db.txMu.Unlock()
	snap := t.db.snapshot()
	if err := fn(nil); err != nil {
		t.db.restore(snap)
		return err
	}
	return nil
}

type memTasks struct{ db *memDB }

func (s memTasks) Create(ctx context.Context, exec sqlx.ExtContext, task *models.Task) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if task.ID == "" {
		task.ID = s.db.nextID("task")
	}
	task.Version = 1
	now := time.Now().UTC()
	task.CreatedAt, task.UpdatedAt = now, now
	s.db.tasks[task.ID] = *task
	return nil
}

func (s memTasks) GetByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Task, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	task, ok := s.db.tasks[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &task, nil
}

func (s memTasks) GetForUpdate(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Task, error) {
	task, err := s.GetByID(ctx, exec, id)
	if err != nil {
		return nil, err
	}
	if s.db.onLock != nil {
		s.db.onLock(task)
	}
	return task, nil
}

func (s memTasks) Update(ctx context.Context, exec sqlx.ExtContext, task *models.Task) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	stored, ok := s.db.tasks[task.ID]
	if !ok || stored.Version != task.Version {
		return sql.ErrNoRows
	}
	task.Version++
	task.UpdatedAt = time.Now().UTC()
	s.db.tasks[task.ID] = *task
	return nil
}

func (s memTasks) List(ctx context.Context, filter models.TaskFilter) ([]models.Task, int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.Task
	for _, t := range s.db.tasks {
		if filter.AssignedTo != "" && (t.AssignedToID == nil || *t.AssignedToID != filter.AssignedTo) {
			continue
		}
		if filter.Department != nil && t.CurrentDepartment != *filter.Department {
			continue
		}
		if len(filter.Status) > 0 && !containsStatus(filter.Status, t.Status) {
			continue
		}
		if filter.Unassigned && t.AssignedToID != nil {
			continue
		}
		if filter.ExcludeDone && t.Status.Terminal() {
			continue
		}
		if !filter.IncludeArchived && t.IsArchived {
			continue
		}
		if filter.DeadlineFrom != nil && (t.Deadline == nil || t.Deadline.Before(*filter.DeadlineFrom)) {
			continue
		}
		if filter.DeadlineTo != nil && (t.Deadline == nil || t.Deadline.After(*filter.DeadlineTo)) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (s memTasks) DepartmentStats(ctx context.Context, dept models.Department) (*models.DepartmentStats, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	stats := &models.DepartmentStats{}
	for _, t := range s.db.tasks {
		if t.CurrentDepartment != dept || t.IsArchived {
			continue
		}
		stats.Total++
		switch t.Status {
		case models.TaskStatusOpen:
			stats.Open++
		case models.TaskStatusAssigned:
			stats.Assigned++
		case models.TaskStatusCompleted:
			stats.Completed++
		}
	}
	return stats, nil
}

func (s memTasks) Workload(ctx context.Context, dept models.Department) ([]models.MemberWorkload, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.MemberWorkload
	for _, u := range s.db.users {
		if !u.InDepartment(dept) {
			continue
		}
		w := models.MemberWorkload{UserID: u.ID, Username: u.Username}
		for _, t := range s.db.tasks {
			if t.AssignedToID != nil && *t.AssignedToID == u.ID && !t.Status.Terminal() {
				w.TaskCount++
			}
		}
		out = append(out, w)
	}
	return out, nil
}

type memHistory struct{ db *memDB }

func (s memHistory) Append(ctx context.Context, exec sqlx.ExtContext, entry *models.TaskHistory) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if entry.ID == "" {
		entry.ID = s.db.nextID("hist")
	}
	s.db.history = append(s.db.history, *entry)
	return nil
}

func (s memHistory) ListByTask(ctx context.Context, taskID string) ([]models.TaskHistory, error) {
	return s.db.historyOf(taskID), nil
}

type memNotifications struct{ db *memDB }

func (s memNotifications) Create(ctx context.Context, exec sqlx.ExtContext, n *models.Notification) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.failNotifications {
		return errInjected
	}
	if n.ID == "" {
		n.ID = s.db.nextID("notif")
	}
	s.db.notifications = append(s.db.notifications, *n)
	return nil
}

func (s memNotifications) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range s.db.notificationsFor(userID) {
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (s memNotifications) CountUnread(ctx context.Context, userID string) (int, error) {
	count := 0
	for _, n := range s.db.notificationsFor(userID) {
		if !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (s memNotifications) MarkRead(ctx context.Context, id, userID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for i := range s.db.notifications {
		if s.db.notifications[i].ID == id && s.db.notifications[i].UserID == userID {
			s.db.notifications[i].IsRead = true
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s memNotifications) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for i := range s.db.notifications {
		if s.db.notifications[i].UserID == userID && !s.db.notifications[i].IsRead {
			s.db.notifications[i].IsRead = true
			n++
		}
	}
	return n, nil
}

type memUsers struct{ db *memDB }

func (s memUsers) sorted() []models.User {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := make([]models.User, 0, len(s.db.users))
	for _, u := range s.db.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s memUsers) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &u, nil
}

func (s memUsers) FindManager(ctx context.Context, exec sqlx.ExtContext, dept models.Department) (*models.User, error) {
	for _, u := range s.sorted() {
		if u.IsManager && u.InDepartment(dept) {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (s memUsers) FindAnyMember(ctx context.Context, exec sqlx.ExtContext, dept models.Department) (*models.User, error) {
	for _, u := range s.sorted() {
		if u.InDepartment(dept) {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (s memUsers) FindMembers(ctx context.Context, exec sqlx.ExtContext, dept models.Department) ([]models.User, error) {
	var out []models.User
	for _, u := range s.sorted() {
		if u.InDepartment(dept) {
			out = append(out, u)
		}
	}
	return out, nil
}

type memArticles struct{ db *memDB }

func (s memArticles) Create(ctx context.Context, exec sqlx.ExtContext, article *models.CXOArticle) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if article.ID == "" {
		article.ID = s.db.nextID("article")
	}
	article.UploadedAt = time.Now().UTC()
	s.db.articles[article.ID] = *article
	return nil
}

func (s memArticles) GetByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.CXOArticle, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	a, ok := s.db.articles[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &a, nil
}

func (s memArticles) GetForUpdate(ctx context.Context, exec sqlx.ExtContext, id string) (*models.CXOArticle, error) {
	return s.GetByID(ctx, exec, id)
}

func (s memArticles) GetByTaskID(ctx context.Context, exec sqlx.ExtContext, taskID string) (*models.CXOArticle, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, a := range s.db.articles {
		if a.TaskID != nil && *a.TaskID == taskID {
			a := a
			return &a, nil
		}
	}
	return nil, nil
}

func (s memArticles) Update(ctx context.Context, exec sqlx.ExtContext, article *models.CXOArticle) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.articles[article.ID]; !ok {
		return sql.ErrNoRows
	}
	s.db.articles[article.ID] = *article
	return nil
}

func (s memArticles) List(ctx context.Context, filter models.CXOArticleFilter) ([]models.CXOArticle, int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.CXOArticle
	for _, a := range s.db.articles {
		if filter.UploadedBy != "" && a.UploadedByID != filter.UploadedBy {
			continue
		}
		if !filter.IncludeArchived && a.IsArchived {
			continue
		}
		if len(filter.Status) > 0 {
			match := false
			for _, st := range filter.Status {
				match = match || st == a.Status
			}
			if !match {
				continue
			}
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (s memArticles) AppendAnnotation(ctx context.Context, exec sqlx.ExtContext, ann *models.CXOArticleAnnotation) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	ann.ID = s.db.nextID("ann")
	seq := 0
	for _, a := range s.db.annotations {
		if a.ArticleID == ann.ArticleID && a.Seq > seq {
			seq = a.Seq
		}
	}
	ann.Seq = seq + 1
	s.db.annotations = append(s.db.annotations, *ann)
	return nil
}

func (s memArticles) ListAnnotations(ctx context.Context, articleID string) ([]models.CXOArticleAnnotation, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.CXOArticleAnnotation
	for _, a := range s.db.annotations {
		if a.ArticleID == articleID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s memArticles) AddFile(ctx context.Context, exec sqlx.ExtContext, file *models.CXOArticleFile) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	file.ID = s.db.nextID("afile")
	s.db.articleFiles = append(s.db.articleFiles, *file)
	return nil
}

func (s memArticles) ListFiles(ctx context.Context, articleID string) ([]models.CXOArticleFile, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.CXOArticleFile
	for _, f := range s.db.articleFiles {
		if f.ArticleID == articleID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s memArticles) GetFile(ctx context.Context, id string) (*models.CXOArticleFile, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, f := range s.db.articleFiles {
		if f.ID == id {
			f := f
			return &f, nil
		}
	}
	return nil, sql.ErrNoRows
}

type memTaskFiles struct{ db *memDB }

func (s memTaskFiles) Create(ctx context.Context, exec sqlx.ExtContext, file *models.TaskFile) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	file.ID = s.db.nextID("file")
	file.Version = 1
	s.db.taskFiles[file.ID] = *file
	return nil
}

func (s memTaskFiles) GetByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.TaskFile, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	f, ok := s.db.taskFiles[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &f, nil
}

func (s memTaskFiles) ListByTask(ctx context.Context, taskID string) ([]models.TaskFile, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.TaskFile
	for _, f := range s.db.taskFiles {
		if f.TaskID == taskID && !f.IsDeleted {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s memTaskFiles) SoftDelete(ctx context.Context, exec sqlx.ExtContext, id string, at time.Time) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	f, ok := s.db.taskFiles[id]
	if !ok || f.IsDeleted {
		return sql.ErrNoRows
	}
	f.IsDeleted = true
	f.DeletedAt = &at
	s.db.taskFiles[id] = f
	return nil
}

type memCatalog struct{ db *memDB }

func (s memCatalog) GetBrand(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Brand, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	b, ok := s.db.brands[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &b, nil
}

func (s memCatalog) GetEdition(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Edition, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	e, ok := s.db.editions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &e, nil
}

func (s memCatalog) ListBrands(ctx context.Context) ([]models.Brand, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := make([]models.Brand, 0, len(s.db.brands))
	for _, b := range s.db.brands {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s memCatalog) BrandNameExists(ctx context.Context, name, excludeID string) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, b := range s.db.brands {
		if strings.EqualFold(b.Name, name) && b.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (s memCatalog) CreateBrand(ctx context.Context, exec sqlx.ExtContext, brand *models.Brand) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	brand.ID = s.db.nextID("brand")
	s.db.brands[brand.ID] = *brand
	return nil
}

func (s memCatalog) UpdateBrand(ctx context.Context, brand *models.Brand) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.brands[brand.ID]; !ok {
		return sql.ErrNoRows
	}
	s.db.brands[brand.ID] = *brand
	return nil
}

func (s memCatalog) DeleteBrand(ctx context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.brands[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.db.brands, id)
	return nil
}

func (s memCatalog) ListEditions(ctx context.Context, brandID string) ([]models.Edition, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.Edition
	for _, e := range s.db.editions {
		if brandID == "" || e.BrandID == brandID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s memCatalog) CreateEdition(ctx context.Context, exec sqlx.ExtContext, edition *models.Edition) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	edition.ID = s.db.nextID("ed")
	if edition.Status == "" {
		edition.Status = models.EditionScheduled
	}
	s.db.editions[edition.ID] = *edition
	return nil
}

func (s memCatalog) UpdateEditionStatus(ctx context.Context, id string, status models.EditionStatus) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	e, ok := s.db.editions[id]
	if !ok {
		return sql.ErrNoRows
	}
	e.Status = status
	s.db.editions[id] = e
	return nil
}

type memAds struct{ db *memDB }

func (s memAds) Create(ctx context.Context, ad *models.Ad) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	ad.ID = s.db.nextID("ad")
	s.db.ads[ad.ID] = *ad
	return nil
}

func (s memAds) GetByID(ctx context.Context, id string) (*models.Ad, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	ad, ok := s.db.ads[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &ad, nil
}

func (s memAds) List(ctx context.Context, brandID string) ([]models.Ad, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.Ad
	for _, ad := range s.db.ads {
		if brandID == "" || ad.BrandID == brandID {
			out = append(out, ad)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s memAds) AssignEdition(ctx context.Context, id string, editionID *string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	ad, ok := s.db.ads[id]
	if !ok {
		return sql.ErrNoRows
	}
	ad.EditionID = editionID
	s.db.ads[id] = ad
	return nil
}

// memCache is a JSON map standing in for Redis.
type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]byte{}}
}

func (c *memCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = raw
	return nil
}

func (c *memCache) DeleteByPattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}

func (db *memDB) stores() TaskStores {
	return TaskStores{
		Tasks:         memTasks{db},
		History:       memHistory{db},
		Notifications: memNotifications{db},
		Users:         memUsers{db},
		Articles:      memArticles{db},
	}
}

// staff is the default cast used across workflow tests.
type staff struct {
	sales, cxo, cxoManager, admin        *models.User
	edManager, editor, editor2           *models.User
	dsManager, designer, designer2, boss *models.User
}

func deptOf(d models.Department) *models.Department { return &d }

func seedStaff(db *memDB) staff {
	return staff{
		edManager:  db.addUser(models.User{ID: "u-edm", Username: "emma", Role: models.RoleEditorial, Department: deptOf(models.DepartmentEditorial), IsManager: true}),
		editor:     db.addUser(models.User{ID: "u-ed1", Username: "eve", Role: models.RoleEditorial, Department: deptOf(models.DepartmentEditorial)}),
		editor2:    db.addUser(models.User{ID: "u-ed2", Username: "ed", Role: models.RoleEditorial, Department: deptOf(models.DepartmentEditorial)}),
		dsManager:  db.addUser(models.User{ID: "u-dsm", Username: "dora", Role: models.RoleDesign, Department: deptOf(models.DepartmentDesign), IsManager: true}),
		designer:   db.addUser(models.User{ID: "u-ds1", Username: "dan", Role: models.RoleDesign, Department: deptOf(models.DepartmentDesign)}),
		designer2:  db.addUser(models.User{ID: "u-ds2", Username: "dina", Role: models.RoleDesign, Department: deptOf(models.DepartmentDesign)}),
		sales:      db.addUser(models.User{ID: "u-sales", Username: "sam", Role: models.RoleSales, Department: deptOf(models.DepartmentSales)}),
		cxo:        db.addUser(models.User{ID: "u-cxo", Username: "carl", Role: models.RoleCXO}),
		cxoManager: db.addUser(models.User{ID: "u-cxom", Username: "cora", Role: models.RoleCXO, IsManager: true}),
		admin:      db.addUser(models.User{ID: "u-admin", Username: "root", Role: models.RoleSuperAdmin}),
		boss:       db.addUser(models.User{ID: "u-boss", Username: "max", Role: models.RoleManager, IsManager: true}),
	}
}
