package tests

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/yuva/core/carelog"
	"github.com/trezcool/yuva/core/user"
	"github.com/trezcool/yuva/services/filestore"
	"github.com/trezcool/yuva/tests"
)

type upload struct {
	name, contentType string
	content           []byte
}

func pngBytes(t *testing.T, w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("png.Encode() failed: %v", err)
	}
	return buf.Bytes()
}

func newMultipartRequest(t *testing.T, path, token string, files ...upload) (*http.Request, *httptest.ResponseRecorder) {
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set(echo.HeaderContentDisposition, `form-data; name="files"; filename="`+f.name+`"`)
		h.Set(echo.HeaderContentType, f.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	return req, httptest.NewRecorder()
}

func Test_careLogApi_addMedia(t *testing.T) {
	e := setup(t)

	teacher := e.createUser(t, "Teacher", "teacher", user.RoleTeacher)
	otherTeacher := e.createUser(t, "Other Teacher", "otherteacher", user.RoleTeacher)
	mum := e.createUser(t, "Mum", "mum", user.RoleParent)
	amani := testutil.CreateChild(t, e.childRepo, "Amani", "Sunflowers", teacher.ID, mum.ID)
	teacherToken := getToken(t, e.conf, teacher)

	req, rec := newAuthRequest(http.MethodPost, "/v1/daily-reports", teacherToken, marchallObj(t, carelog.NewDailyReport{
		ChildID:      amani.ID,
		ReportFields: carelog.ReportFields{Mood: "happy"},
	}))
	e.serve(req, rec)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var report carelog.DailyReport
	unmarshall(t, rec, &report)
	mediaPath := "/v1/daily-reports/" + report.ID + "/media"

	photo := upload{name: "Garden.PNG", contentType: "image/png", content: pngBytes(t, 64, 48)}
	notes := upload{name: "notes.txt", contentType: "text/plain", content: []byte("planted beans")}

	t.Run("no files", func(t *testing.T) {
		req, rec := newMultipartRequest(t, mediaPath, teacherToken)
		e.serve(req, rec)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not the author", func(t *testing.T) {
		req, rec := newMultipartRequest(t, mediaPath, getToken(t, e.conf, otherTeacher), photo)
		e.serve(req, rec)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("parents cannot upload", func(t *testing.T) {
		req, rec := newMultipartRequest(t, mediaPath, getToken(t, e.conf, mum), photo)
		e.serve(req, rec)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("uploaded", func(t *testing.T) {
		req, rec := newMultipartRequest(t, mediaPath, teacherToken, photo, notes)
		e.serve(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var r carelog.DailyReport
		unmarshall(t, rec, &r)
		require.Len(t, r.MediaURLs, 2)
		assert.True(t, strings.HasSuffix(r.MediaURLs[0], ".png"))
		assert.True(t, strings.HasSuffix(r.MediaURLs[1], ".txt"))

		for i, url := range r.MediaURLs {
			require.True(t, strings.HasPrefix(url, "/media/"))
			key := strings.TrimPrefix(url, "/media/")
			_, err := os.Stat(filepath.Join(e.mediaDir, filepath.FromSlash(key)))
			assert.NoError(t, err)

			_, err = os.Stat(filepath.Join(e.mediaDir, filepath.FromSlash(filestore.ThumbnailKey(key))))
			if i == 0 {
				assert.NoError(t, err, "images get a thumbnail")
			} else {
				assert.True(t, os.IsNotExist(err), "other files do not")
			}
		}

		// served back as static files
		req, rec = newRequest(http.MethodGet, r.MediaURLs[1])
		e.serve(req, rec)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "planted beans", rec.Body.String())
	})
}
