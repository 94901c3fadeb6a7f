package services

import (
	"time"

	"github.com/songyu/bugtrack/internal/models"
	"github.com/songyu/bugtrack/pkg/logger"
	"gorm.io/gorm"
)

// BugService is the repository of defect records. Assignment crosses the
// boundary as a human-entered developer name and is resolved to an id at
// write time; reads join the name back in, defaulting to "unassigned".
type BugService struct {
	db *gorm.DB
}

func NewBugService(db *gorm.DB) *BugService {
	return &BugService{db: db}
}

// BugCreate carries the fields for a new defect record.
type BugCreate struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Version      string `json:"version"`
	Region       string `json:"region"`
	Submitter    string `json:"submitter"`
	AssigneeName string `json:"assignee_name"`
	Status       string `json:"status"`
	Screenshot   string `json:"screenshot"`
	LogFile      string `json:"log_file"`
}

// BugUpdate carries optional fields for a partial bug update. AssigneeName
// is re-resolved to a developer id on every call, never cached.
type BugUpdate struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	Version      *string `json:"version"`
	Region       *string `json:"region"`
	Status       *string `json:"status"`
	AssigneeName *string `json:"assignee_name"`
	Screenshot   *string `json:"screenshot"`
	LogFile      *string `json:"log_file"`
}

// BugSummary is a list row.
type BugSummary struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Version   string    `json:"version"`
	Region    string    `json:"region"`
	Submitter string    `json:"submitter"`
	Status    string    `json:"status"`
	Assignee  string    `json:"assignee"`
	CreatedAt time.Time `json:"created_at"`
}

// BugDetail is the full record with the assignee name resolved for display.
type BugDetail struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Version     string     `json:"version"`
	Region      string     `json:"region"`
	Submitter   string     `json:"submitter"`
	Status      string     `json:"status"`
	Assignee    string     `json:"assignee"`
	Screenshot  string     `json:"screenshot"`
	LogFile     string     `json:"log_file"`
	CreatedAt   time.Time  `json:"created_at"`
	ResolvedAt  *time.Time `json:"resolved_at"`
}

// MonthCount is one point of the monthly submission trend.
type MonthCount struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

// BugStats aggregates the dashboard numbers.
type BugStats struct {
	Total        int64            `json:"total"`
	Monthly      int64            `json:"monthly"`
	Resolved     int64            `json:"resolved"`
	BySubmitter  map[string]int64 `json:"submitter_stats"`
	ByStatus     map[string]int64 `json:"status_stats"`
	ByAssignee   map[string]int64 `json:"assignee_stats"`
	MonthlyTrend []MonthCount     `json:"monthly_trend"`
}

// resolveAssignee maps a developer name to its id. The "unassigned" sentinel
// and the empty string map to nil. An unknown name also maps to nil with a
// warning only: bug writes proceed unassigned rather than failing.
func (s *BugService) resolveAssignee(name string) (*uint, error) {
	if name == "" || name == models.Unassigned {
		return nil, nil
	}

	var dev models.Developer
	err := s.db.Where("name = ?", name).First(&dev).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			logger.Warn().Str("assignee", name).Msg("assignee name does not resolve to a developer, leaving unassigned")
			return nil, nil
		}
		return nil, err
	}
	return &dev.ID, nil
}

// Create inserts a new bug. Creation never stamps resolved_at, whatever the
// initial status.
func (s *BugService) Create(req BugCreate) (uint, error) {
	assigneeID, err := s.resolveAssignee(req.AssigneeName)
	if err != nil {
		return 0, err
	}

	status := req.Status
	if status == "" {
		status = models.BugStatusPending
	}

	bug := models.Bug{
		Title:       req.Title,
		Description: req.Description,
		Version:     req.Version,
		Region:      req.Region,
		Submitter:   req.Submitter,
		AssigneeID:  assigneeID,
		Status:      status,
		Screenshot:  req.Screenshot,
		LogFile:     req.LogFile,
	}
	if err := s.db.Create(&bug).Error; err != nil {
		return 0, err
	}

	logger.Info().Uint("bug_id", bug.ID).Str("submitter", bug.Submitter).Msg("bug created")
	return bug.ID, nil
}

// Update applies only the provided fields. Setting status to resolved
// bundles a resolved_at stamp into the same write; setting it back to any
// other status leaves resolved_at untouched. This asymmetry against
// SetStatus is intentional and preserved.
func (s *BugService) Update(id uint, upd BugUpdate) (bool, error) {
	updates := make(map[string]interface{})
	if upd.Title != nil {
		updates["title"] = *upd.Title
	}
	if upd.Description != nil {
		updates["description"] = *upd.Description
	}
	if upd.Version != nil {
		updates["version"] = *upd.Version
	}
	if upd.Region != nil {
		updates["region"] = *upd.Region
	}
	if upd.Status != nil {
		updates["status"] = *upd.Status
		if *upd.Status == models.BugStatusResolved {
			updates["resolved_at"] = time.Now()
		}
	}
	if upd.Screenshot != nil {
		updates["screenshot"] = *upd.Screenshot
	}
	if upd.LogFile != nil {
		updates["log_file"] = *upd.LogFile
	}
	if upd.AssigneeName != nil {
		assigneeID, err := s.resolveAssignee(*upd.AssigneeName)
		if err != nil {
			return false, err
		}
		updates["assignee_id"] = assigneeID
	}

	if len(updates) == 0 {
		return false, nil
	}

	res := s.db.Model(&models.Bug{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SetStatus is the narrow path behind the "mark resolved" and "reassign"
// actions. It stamps resolved_at on every call regardless of the target
// status, mirroring the historical behavior; see DESIGN.md before changing.
// The assignee is only rewritten when the name resolves to a developer.
func (s *BugService) SetStatus(id uint, status, assigneeName string) (bool, error) {
	assigneeID, err := s.resolveAssignee(assigneeName)
	if err != nil {
		return false, err
	}

	updates := map[string]interface{}{
		"status":      status,
		"resolved_at": time.Now(),
	}
	if assigneeID != nil {
		updates["assignee_id"] = *assigneeID
	}

	res := s.db.Model(&models.Bug{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Delete hard-deletes a bug. Nothing references bugs, so no cascade is
// needed. A missing id returns false, never an error.
func (s *BugService) Delete(id uint) (bool, error) {
	var count int64
	if err := s.db.Model(&models.Bug{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	if count == 0 {
		return false, nil
	}

	res := s.db.Delete(&models.Bug{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// bugRow is the scan target for joined reads.
type bugRow struct {
	models.Bug
	AssigneeName *string
}

func (r *bugRow) assignee() string {
	if r.AssigneeName == nil || *r.AssigneeName == "" {
		return models.Unassigned
	}
	return *r.AssigneeName
}

const bugJoinSelect = "bugs.*, developers.name AS assignee_name"

// GetByID returns the full record with the assignee name resolved, or nil
// when the id does not exist.
func (s *BugService) GetByID(id uint) (*BugDetail, error) {
	var row bugRow
	res := s.db.Table("bugs").
		Select(bugJoinSelect).
		Joins("LEFT JOIN developers ON developers.id = bugs.assignee_id").
		Where("bugs.id = ?", id).
		Scan(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}

	return &BugDetail{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		Version:     row.Version,
		Region:      row.Region,
		Submitter:   row.Submitter,
		Status:      row.Status,
		Assignee:    row.assignee(),
		Screenshot:  row.Screenshot,
		LogFile:     row.LogFile,
		CreatedAt:   row.CreatedAt,
		ResolvedAt:  row.ResolvedAt,
	}, nil
}

func summarize(rows []bugRow) []BugSummary {
	summaries := make([]BugSummary, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		summaries = append(summaries, BugSummary{
			ID:        r.ID,
			Title:     r.Title,
			Version:   r.Version,
			Region:    r.Region,
			Submitter: r.Submitter,
			Status:    r.Status,
			Assignee:  r.assignee(),
			CreatedAt: r.CreatedAt,
		})
	}
	return summaries
}

// List returns every bug, newest first.
func (s *BugService) List() ([]BugSummary, error) {
	var rows []bugRow
	err := s.db.Table("bugs").
		Select(bugJoinSelect).
		Joins("LEFT JOIN developers ON developers.id = bugs.assignee_id").
		Order("bugs.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return summarize(rows), nil
}

// ListBySubmitter returns the bugs a given submitter filed, newest first.
func (s *BugService) ListBySubmitter(name string) ([]BugSummary, error) {
	var rows []bugRow
	err := s.db.Table("bugs").
		Select(bugJoinSelect).
		Joins("LEFT JOIN developers ON developers.id = bugs.assignee_id").
		Where("bugs.submitter = ?", name).
		Order("bugs.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return summarize(rows), nil
}

// ListByAssignee returns the bugs assigned to the named developer, newest
// first. Unassigned bugs never match.
func (s *BugService) ListByAssignee(name string) ([]BugSummary, error) {
	var rows []bugRow
	err := s.db.Table("bugs").
		Select(bugJoinSelect).
		Joins("JOIN developers ON developers.id = bugs.assignee_id").
		Where("developers.name = ?", name).
		Order("bugs.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return summarize(rows), nil
}

type nameCount struct {
	Name  string
	Count int64
}

// Stats computes the aggregate dashboard numbers. The monthly trend covers
// the last 12 calendar months, most recent first, including empty months.
func (s *BugService) Stats() (*BugStats, error) {
	stats := &BugStats{
		BySubmitter: make(map[string]int64),
		ByStatus:    make(map[string]int64),
		ByAssignee:  make(map[string]int64),
	}

	if err := s.db.Model(&models.Bug{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	if err := s.db.Model(&models.Bug{}).
		Where("created_at >= ?", monthStart).
		Count(&stats.Monthly).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.Bug{}).
		Where("status = ?", models.BugStatusResolved).
		Count(&stats.Resolved).Error; err != nil {
		return nil, err
	}

	var submitters []nameCount
	if err := s.db.Model(&models.Bug{}).
		Select("submitter AS name, COUNT(*) AS count").
		Group("submitter").
		Scan(&submitters).Error; err != nil {
		return nil, err
	}
	for _, r := range submitters {
		stats.BySubmitter[r.Name] = r.Count
	}

	var statuses []nameCount
	if err := s.db.Model(&models.Bug{}).
		Select("status AS name, COUNT(*) AS count").
		Group("status").
		Scan(&statuses).Error; err != nil {
		return nil, err
	}
	for _, r := range statuses {
		stats.ByStatus[r.Name] = r.Count
	}

	var assignees []nameCount
	if err := s.db.Table("bugs").
		Select("developers.name AS name, COUNT(*) AS count").
		Joins("JOIN developers ON developers.id = bugs.assignee_id").
		Where("bugs.assignee_id IS NOT NULL").
		Group("developers.id, developers.name").
		Scan(&assignees).Error; err != nil {
		return nil, err
	}
	for _, r := range assignees {
		stats.ByAssignee[r.Name] = r.Count
	}

	for i := 0; i < 12; i++ {
		start := monthStart.AddDate(0, -i, 0)
		end := start.AddDate(0, 1, 0)

		var count int64
		if err := s.db.Model(&models.Bug{}).
			Where("created_at >= ? AND created_at < ?", start, end).
			Count(&count).Error; err != nil {
			return nil, err
		}
		stats.MonthlyTrend = append(stats.MonthlyTrend, MonthCount{
			Month: start.Format("2006-01"),
			Count: count,
		})
	}

	return stats, nil
}
