// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.


package rest

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mlnoga/viirsresam/internal/config"
	"github.com/mlnoga/viirsresam/internal/granule"
	"github.com/mlnoga/viirsresam/internal/granule/granuletest"
	"github.com/mlnoga/viirsresam/internal/tables"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(config.Default(), gin.New())
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w:=httptest.NewRecorder()
	req:=httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

// Changes into a fresh directory holding a geolocation and a band granule
func inGranuleTree(t *testing.T) {
	wd, err:=os.Getwd()
	if err!=nil { t.Fatal(err) }
	if err:=os.Chdir(t.TempDir()); err!=nil { t.Fatal(err) }
	t.Cleanup(func() { os.Chdir(wd) })

	h:=2*tables.Detectors
	lat, lon:=granuletest.Swath(h)
	granuletest.Geo(t, "GMODO_npp_d20200101", lat, lon)
	g:=granuletest.New(t, "SVM15_npp_d20200101")
	granuletest.Create(t, g, granule.NamesForBand(15).Field, granule.EncodingUint16, 0.01, 0, granuletest.Constant(h, 25000))
}

func TestPing(t *testing.T) {
	w:=do(newTestRouter(), "GET", "/api/v1/ping", "")
	if w.Code!=http.StatusOK || !strings.Contains(w.Body.String(), "pong") {
		t.Errorf("ping=%d %q; want 200 pong", w.Code, w.Body.String())
	}
}

func TestResampleRejectsMissingArgs(t *testing.T) {
	w:=do(newTestRouter(), "POST", "/api/v1/resample", `{"bands":["SVM15*"]}`)
	if w.Code!=http.StatusBadRequest { t.Errorf("code=%d; want 400", w.Code) }
}

func TestResample(t *testing.T) {
	inGranuleTree(t)
	w:=do(newTestRouter(), "POST", "/api/v1/resample", `{"geo":"GMODO_npp_d20200101","bands":["SVM15_*"]}`)
	body:=w.Body.String()
	if w.Code!=http.StatusOK || !strings.Contains(body, "Resampled 3200x32 swath") || !strings.Contains(body, "Done.") {
		t.Errorf("resample=%d:\n%s", w.Code, body)
	}
	if ct:=w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") { t.Errorf("content type %q; want text/plain", ct) }
}

func TestResampleRejectsAbsolutePaths(t *testing.T) {
	inGranuleTree(t)
	wd, _:=os.Getwd()
	w:=do(newTestRouter(), "POST", "/api/v1/resample", `{"geo":"GMODO_npp_d20200101","bands":["`+wd+`/SVM15_*"]}`)
	if body:=w.Body.String(); !strings.Contains(body, "error:") || strings.Contains(body, "Done.") {
		t.Errorf("absolute band path:\n%s", body)
	}
	w=do(newTestRouter(), "POST", "/api/v1/resample", `{"geo":"`+wd+`/GMODO_npp_d20200101","bands":["SVM15_*"]}`)
	if body:=w.Body.String(); !strings.Contains(body, "outside current directory tree") {
		t.Errorf("absolute geo path:\n%s", body)
	}
}

func TestStats(t *testing.T) {
	inGranuleTree(t)
	w:=do(newTestRouter(), "POST", "/api/v1/stats", `{"dirs":["SVM15_*"]}`)
	if body:=w.Body.String(); !strings.Contains(body, "Valid 102400 ") {
		t.Errorf("stats:\n%s", body)
	}
}

func TestOps(t *testing.T) {
	inGranuleTree(t)
	seq:=`{"type":"seq","steps":[
		{"type":"loadMany","dirPatterns":["GMODO_*"]},
		{"type":"sortGeo"}]}`
	w:=do(newTestRouter(), "POST", "/api/v1/ops", seq)
	if body:=w.Body.String(); !strings.Contains(body, "Sorting 3200x32 geolocation") || !strings.Contains(body, "Done.") {
		t.Errorf("ops:\n%s", body)
	}
	g, err:=granule.Open("GMODO_npp_d20200101", 0, nil)
	if err!=nil { t.Fatal(err) }
	if _, ok, _:=g.ReadAttribute(granule.LatitudeName, granule.GeoAttrName); !ok { t.Errorf("sortGeo did not mark latitude") }

	w=do(newTestRouter(), "POST", "/api/v1/ops", `{"type":"seq","steps":[{"type":"bogus"}]}`)
	if w.Code!=http.StatusBadRequest { t.Errorf("unknown operator code=%d; want 400", w.Code) }
}
