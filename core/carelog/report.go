package carelog

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/user"
)

func (svc *Service) CreateReport(ctx context.Context, actor user.User, nr NewDailyReport) (DailyReport, error) {
	if !(actor.IsAdmin() || actor.IsTeacher()) {
		return DailyReport{}, core.ErrPermissionDenied
	}
	nr.ChildID = core.CleanString(nr.ChildID)
	nr.clean()
	if err := svc.validate.Struct(nr); err != nil {
		return DailyReport{}, err
	}
	if _, err := svc.children.Authorize(ctx, actor, nr.ChildID); err != nil {
		return DailyReport{}, err
	}
	if nr.Date.IsZero() {
		nr.Date = svc.today()
	}

	now := svc.now().UTC()
	r := DailyReport{
		ChildID:   nr.ChildID,
		Date:      nr.Date,
		MediaURLs: []string{},
		TeacherID: null.StringFrom(actor.ID),
		CreatedAt: now,
		UpdatedAt: now,
	}
	nr.apply(&r)
	return svc.repo.CreateDailyReport(ctx, r)
}

func (svc *Service) GetReport(ctx context.Context, actor user.User, id string) (DailyReport, error) {
	r, err := svc.repo.GetDailyReport(ctx, id)
	if err != nil {
		return DailyReport{}, err
	}
	if _, err = svc.children.Authorize(ctx, actor, r.ChildID); err != nil {
		return DailyReport{}, err
	}
	return r, nil
}

func (svc *Service) QueryReports(ctx context.Context, actor user.User, filter *QueryFilter) ([]DailyReport, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	if ok, err := svc.scope(ctx, actor, filter); err != nil || !ok {
		return []DailyReport{}, err
	}
	return svc.repo.QueryDailyReports(ctx, filter)
}

// editable loads a report its author (or an admin) may change.
func (svc *Service) editable(ctx context.Context, actor user.User, id string) (DailyReport, error) {
	r, err := svc.repo.GetDailyReport(ctx, id)
	if err != nil {
		return DailyReport{}, err
	}
	if !(actor.IsAdmin() || (actor.IsTeacher() && r.TeacherID.String == actor.ID)) {
		return DailyReport{}, core.ErrPermissionDenied
	}
	return r, nil
}

func (svc *Service) UpdateReport(ctx context.Context, actor user.User, id string, fields ReportFields) (DailyReport, error) {
	r, err := svc.editable(ctx, actor, id)
	if err != nil {
		return DailyReport{}, err
	}
	fields.clean()
	fields.apply(&r)
	r.UpdatedAt = svc.now().UTC()
	return svc.repo.UpdateDailyReport(ctx, r)
}

func (svc *Service) DeleteReport(ctx context.Context, actor user.User, id string) error {
	if _, err := svc.editable(ctx, actor, id); err != nil {
		return err
	}
	return svc.repo.DeleteDailyReport(ctx, id)
}

// AddMedia uploads the files one after the other and appends their URLs to the report.
// When an upload fails, the files stored so far by this call are deleted before returning.
func (svc *Service) AddMedia(ctx context.Context, actor user.User, id string, uploads []core.Upload) (DailyReport, error) {
	r, err := svc.editable(ctx, actor, id)
	if err != nil {
		return DailyReport{}, err
	}
	if len(uploads) == 0 {
		return DailyReport{}, core.NewFieldError("files", "no file provided")
	}

	stored := make([]core.StoredFile, 0, len(uploads))
	rollback := func() {
		for _, f := range stored {
			// the original error matters more than a failed clean up
			_ = svc.files.Delete(ctx, f.Key)
		}
	}

	for _, up := range uploads {
		f, err := svc.put(ctx, r, up)
		if err != nil {
			rollback()
			return DailyReport{}, errors.Wrapf(err, "uploading %q", up.Filename)
		}
		stored = append(stored, f)
	}

	for _, f := range stored {
		r.MediaURLs = append(r.MediaURLs, f.URL)
	}
	r.UpdatedAt = svc.now().UTC()
	r, err = svc.repo.UpdateDailyReport(ctx, r)
	if err != nil {
		rollback()
		return DailyReport{}, errors.Wrap(err, "saving media urls")
	}
	return r, nil
}

func (svc *Service) put(ctx context.Context, r DailyReport, up core.Upload) (core.StoredFile, error) {
	rc, err := up.Open()
	if err != nil {
		return core.StoredFile{}, err
	}
	defer rc.Close()

	key := path.Join("daily-reports", r.ID, fmt.Sprintf("%s%s", uuid.New().String(), strings.ToLower(path.Ext(up.Filename))))
	return svc.files.Put(ctx, key, rc, up.ContentType)
}
