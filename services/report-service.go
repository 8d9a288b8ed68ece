package services

import (
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/davidpoza/dps-toggl-api/apperrors"
	"github.com/davidpoza/dps-toggl-api/models"
	"github.com/davidpoza/dps-toggl-api/store"
	"github.com/davidpoza/dps-toggl-api/utils"
)

// ReportService groups a filtered task set by date and attaches per-date
// counts and summed durations.
type ReportService struct {
	store store.Store
	tasks *TaskService
}

func NewReportService(st store.Store, tasks *TaskService) *ReportService {
	return &ReportService{store: st, tasks: tasks}
}

type ReportFilter struct {
	User      *primitive.ObjectID
	Project   *primitive.ObjectID
	StartDate string
	EndDate   string
	// Limit caps the number of returned date groups; zero means no cap. The
	// distinct date count is always computed over the whole filtered set.
	Limit int
}

func (s *ReportService) BuildReport(ctx context.Context, caller *models.User, f ReportFilter) (*models.Report, error) {
	filter := bson.M{}
	if !caller.Admin {
		filter["user"] = caller.ID
	} else if f.User != nil {
		filter["user"] = *f.User
	}
	if f.Project != nil {
		filter["project"] = *f.Project
	}
	dateRange := bson.M{}
	if f.StartDate != "" {
		dateRange["$gte"] = f.StartDate
	}
	if f.EndDate != "" {
		dateRange["$lte"] = f.EndDate
	}
	if len(dateRange) > 0 {
		filter["date"] = dateRange
	}

	var tasks []models.Task
	if err := s.store.FindWhere(ctx, store.Tasks, filter, bson.D{{Key: "date", Value: -1}}, &tasks); err != nil {
		return nil, err
	}
	details, err := s.tasks.Populate(ctx, tasks)
	if err != nil {
		return nil, err
	}

	// Group by identical date string, accumulating durations in integer
	// tenths of an hour so the totals do not drift.
	groups := make(map[string]*models.DayGroup)
	tenths := make(map[string]int)
	var dates []string
	for i, task := range tasks {
		g, ok := groups[task.Date]
		if !ok {
			g = &models.DayGroup{Date: task.Date, Tasks: []models.TaskDetail{}}
			groups[task.Date] = g
			dates = append(dates, task.Date)
		}
		d, err := utils.DiffTenths(task.StartHour, task.EndHour)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.Internal, "stored task has an invalid hour range", err)
		}
		tenths[task.Date] += d
		g.TaskCount++
		g.Tasks = append(g.Tasks, details[i])
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	dateCount, err := s.countDates(ctx, filter)
	if err != nil {
		return nil, err
	}

	report := &models.Report{Days: []models.DayGroup{}, DateCount: dateCount}
	for _, date := range dates {
		if f.Limit > 0 && len(report.Days) >= f.Limit {
			break
		}
		g := groups[date]
		g.TotalHours = float64(tenths[date]) / 10
		report.Days = append(report.Days, *g)
	}
	return report, nil
}

// countDates computes the distinct date count of the whole filtered set with
// an aggregation pipeline, independent of the group limit.
func (s *ReportService) countDates(ctx context.Context, filter bson.M) (int, error) {
	pipeline := []bson.M{
		{"$match": filter},
		{"$group": bson.M{"_id": "$date"}},
		{"$count": "count"},
	}
	var out []struct {
		Count int64 `bson:"count"`
	}
	if err := s.store.Aggregate(ctx, store.Tasks, pipeline, &out); err != nil {
		return 0, err
	}
	if len(out) == 0 {
		return 0, nil
	}
	return int(out[0].Count), nil
}
