package portal_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rohmanhakim/vnlaw-crawler/internal/document"
	"github.com/rohmanhakim/vnlaw-crawler/internal/extractor"
	"github.com/rohmanhakim/vnlaw-crawler/internal/metadata"
	"github.com/rohmanhakim/vnlaw-crawler/internal/portal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	pdfBase     = "https://vbpl.vn"
	listingPath = "/VBQPPL_UserControls/Publishing_22/TimKiem/p_KetQuaTimKiemVanBan.aspx"
)

func htmlHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, body)
	}
}

func newVbpl(t *testing.T, mux *http.ServeMux, param portal.VbplParam) (*portal.VbplPortal, *errorSink) {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	sink := &errorSink{}
	client := newClient(t, sink, server.URL)
	return portal.NewVbplPortal(sink, client, extractor.NewDomExtractor(sink), param), sink
}

func TestVbplPortal_ListingQuery(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(listingPath, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("Page"))
		assert.Equal(t, "2", r.URL.Query().Get("RowPerPage"))
		assert.Equal(t, "True", r.URL.Query().Get("IsVietNamese"))
		fmt.Fprint(w, `<div class="message"><strong>3</strong></div>
			<p class="title"><a href="?ItemID=3">Văn bản 3</a></p>`)
	})
	p, _ := newVbpl(t, mux, portal.VbplParam{Collection: document.CollectionPhapQuy, PageSize: 2})

	listing, err := p.Listing(context.Background(), 2)
	require.Nil(t, err)
	assert.Equal(t, 3, listing.Total)
	assert.Equal(t, []portal.ListingEntry{{ID: "3", Title: "Văn bản 3"}}, listing.Entries)
	assert.Equal(t, 2, p.PageSize())
	assert.Equal(t, document.CollectionPhapQuy, p.Collection())
}

func TestVbplPortal_DefaultPageSize(t *testing.T) {
	p, _ := newVbpl(t, http.NewServeMux(), portal.VbplParam{})
	assert.Equal(t, portal.DefaultVbplPageSize, p.PageSize())
}

func TestVbplPortal_DetailWithFullText(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/TW/Pages/vbpq-thuoctinh.aspx", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "96172", r.URL.Query().Get("ItemID"))
		fmt.Fprint(w, propertiesPage)
	})
	mux.HandleFunc("/TW/Pages/vbpq-toanvan.aspx", htmlHandler(`<html><body>
		<div class="toanvancontent"><p>Chương I</p><p>Điều 1. Phạm vi điều chỉnh</p></div>
	</body></html>`))

	fallback := &fallbackMock{}
	p, _ := newVbpl(t, mux, portal.VbplParam{PDFBaseURL: pdfBase, Fallback: fallback})

	detail, err := p.Detail(context.Background(), portal.ListingEntry{ID: "96172", Title: "Luật Đất đai", Subtitle: "cũ"})
	require.Nil(t, err)

	doc := detail.Document
	assert.Equal(t, document.SourceVBPL, doc.Source)
	assert.Equal(t, document.CollectionPhapQuy, doc.Collection)
	assert.Equal(t, "96172", doc.ID)
	assert.Equal(t, "Luật Đất đai 2013", doc.Title)
	assert.Equal(t, "Luật số 45/2013/QH13", doc.Subtitle)
	assert.Equal(t, "45/2013/QH13", doc.SerialNumber)
	assert.Contains(t, doc.BodyHTML, "toanvancontent")
	assert.Equal(t, []string{"Chương I", "Điều 1. Phạm vi điều chỉnh"}, detail.Blocks)
	assert.Equal(t, []string{"https://vbpl.vn/FileData/TW/Lists/vbpq/Attachments/96172/Luat%20dat%20dai.pdf"}, detail.AttachmentURLs)
	fallback.AssertNotCalled(t, "FullText", mock.Anything, mock.Anything)
}

func TestVbplPortal_DetailFallsBackWithoutBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/TW/Pages/vbpq-thuoctinh.aspx", htmlHandler(propertiesPage))
	mux.HandleFunc("/TW/Pages/vbpq-toanvan.aspx", htmlHandler(`<html><body><p>Đang cập nhật</p></body></html>`))

	fallback := &fallbackMock{}
	fallback.On("FullText", mock.Anything, mock.MatchedBy(func(d *document.Document) bool {
		return d.ID == "96172" && d.SerialNumber == "45/2013/QH13"
	})).Return(extractor.NewExtractionResult(`<div class="content1"></div>`, []string{"Điều 1. A"}), true, nil)

	p, sink := newVbpl(t, mux, portal.VbplParam{PDFBaseURL: pdfBase, Fallback: fallback})

	detail, err := p.Detail(context.Background(), portal.ListingEntry{ID: "96172"})
	require.Nil(t, err)
	assert.Equal(t, []string{"Điều 1. A"}, detail.Blocks)
	assert.Equal(t, `<div class="content1"></div>`, detail.Document.BodyHTML)
	fallback.AssertExpectations(t)
	assert.Equal(t, []metadata.ErrorCause{metadata.CauseContentInvalid}, sink.causes)
}

func TestVbplPortal_DetailWithoutFallbackKeepsEmptyBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/TW/Pages/vbpq-thuoctinh.aspx", htmlHandler(propertiesPage))
	mux.HandleFunc("/TW/Pages/vbpq-toanvan.aspx", htmlHandler(`<html><body></body></html>`))
	p, _ := newVbpl(t, mux, portal.VbplParam{PDFBaseURL: pdfBase})

	detail, err := p.Detail(context.Background(), portal.ListingEntry{ID: "96172"})
	require.Nil(t, err)
	assert.Empty(t, detail.Blocks)
	assert.Empty(t, detail.Document.BodyHTML)
}

func TestVbplPortal_ConsolidatedDetail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/TW/Pages/vbpq-thuoctinhhn.aspx", htmlHandler(hopNhatPropertiesPage))
	mux.HandleFunc("/TW/Pages/vbpq-toanvanhn.aspx", htmlHandler(`<div class="vbProperties"><p>trống</p></div>`))
	mux.HandleFunc("/TW/Pages/vbpq-van-ban-goc.aspx", htmlHandler(
		`<div class="vbProperties"><object data="/FileData/TW/Lists/vbpq/Attachments/5/hn.pdf#page=1"></object></div>`))

	fallback := &fallbackMock{}
	fallback.On("FullText", mock.Anything, mock.Anything).
		Return(extractor.NewExtractionResult("<div></div>", []string{"Điều 1. B"}), true, nil)

	p, _ := newVbpl(t, mux, portal.VbplParam{Collection: document.CollectionHopNhat, PDFBaseURL: pdfBase, Fallback: fallback})

	detail, err := p.Detail(context.Background(), portal.ListingEntry{ID: "5", Title: "Văn bản hợp nhất 07"})
	require.Nil(t, err)
	assert.Equal(t, document.CollectionHopNhat, detail.Document.Collection)
	assert.Equal(t, "07/VBHN-VPQH", detail.Document.SerialNumber)
	assert.Equal(t, []string{"https://vbpl.vn/FileData/TW/Lists/vbpq/Attachments/5/hn.pdf"}, detail.AttachmentURLs)
	assert.Equal(t, []string{"Điều 1. B"}, detail.Blocks)
	fallback.AssertNumberOfCalls(t, "FullText", 1)
}

func TestVbplPortal_DetailPropertiesFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/TW/Pages/vbpq-thuoctinh.aspx", htmlHandler(`<html><body>Lỗi hệ thống</body></html>`))
	p, sink := newVbpl(t, mux, portal.VbplParam{})

	_, err := p.Detail(context.Background(), portal.ListingEntry{ID: "1"})
	require.NotNil(t, err)
	var parseErr *portal.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, portal.ErrCauseMissingElement, parseErr.Cause)
	assert.Equal(t, []metadata.ErrorCause{metadata.CauseContentInvalid}, sink.causes)
}

func TestVbplPortal_Related(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/TW/Pages/vbpq-vanbanlienquan.aspx", htmlHandler(`<div class="vbLienQuan"><table>
		<tr><td class="label">Văn bản căn cứ</td><td><ul class="listVB">
			<li><p class="title"><a href="?ItemID=11">Hiến pháp</a></p></li>
		</ul></td></tr></table></div>`))
	p, _ := newVbpl(t, mux, portal.VbplParam{})

	edges, err := p.Related(context.Background(), "96172")
	require.Nil(t, err)
	assert.Equal(t, []document.Edge{{
		Source:   document.SourceVBPL,
		Space:    document.SpaceRelated,
		SourceID: "96172",
		TargetID: "11",
		Label:    "Văn bản căn cứ",
	}}, edges)
}

func TestVbplPortal_CrossRefsResolvesTitles(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/TW/Pages/vbpq-luocdo.aspx", htmlHandler(`<html><body>
		<div class="title">Văn bản sửa đổi</div>
		<div><ul>
			<li><a href="?ItemID=7">Luật A</a></li>
			<li><a href="javascript:;">Luật B</a></li>
			<li><a href="javascript:;">Luật C</a></li>
		</ul></div></body></html>`))
	mux.HandleFunc(listingPath, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("Keyword") {
		case "Luật B":
			fmt.Fprint(w, `<p class="title"><a href="?ItemID=8">Luật B</a></p><p class="title"><a href="?ItemID=9">Luật B sửa đổi</a></p>`)
		default:
			fmt.Fprint(w, `<div class="message"><strong>0</strong></div>`)
		}
	})
	p, _ := newVbpl(t, mux, portal.VbplParam{})

	edges, err := p.CrossRefs(context.Background(), "1")
	require.Nil(t, err)
	require.Len(t, edges, 2)
	assert.Equal(t, "7", edges[0].TargetID)
	assert.Equal(t, "8", edges[1].TargetID)
	for _, e := range edges {
		assert.Equal(t, document.SpaceCrossRef, e.Space)
		assert.Equal(t, "Văn bản sửa đổi", e.Label)
	}
}

func TestVbplPortal_ConsolidatedCrossRefs(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/TW/Pages/vbpq-luocdohn.aspx", htmlHandler(`<html><body>
		<div class="w"><a href="?ItemID=1">Luật gốc</a></div>
		<div class="w"><a href="?ItemID=5">Văn bản hợp nhất</a></div>
	</body></html>`))
	p, _ := newVbpl(t, mux, portal.VbplParam{Collection: document.CollectionHopNhat})

	edges, err := p.CrossRefs(context.Background(), "5")
	require.Nil(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, document.LabelConsolidated, edges[0].Label)
	assert.Equal(t, "1", edges[0].TargetID)
}

func TestAnlePortal(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/webcenter/portal/anle/anle", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3", r.URL.Query().Get("selectedPage"))
		assert.Equal(t, "AnLe", r.URL.Query().Get("docType"))
		fmt.Fprint(w, `<span style="color: #2673b4">21</span>
			<a class="thuoctinh-hover" href="/webcenter/portal/anle/chitietanle?dDocName=TAND123">Án lệ số 01/2016/AL</a>`)
	})
	mux.HandleFunc("/webcenter/portal/anle/chitietanle", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "TAND123", r.URL.Query().Get("dDocName"))
		fmt.Fprint(w, `<div id="thuoctinh"><table>
			<tr><th>Số án lệ</th><td>01/2016/AL</td></tr>
			<tr><th>Lĩnh vực</th><td>Dân sự</td></tr>
		</table></div>
		<div id="filetaive"><a href="/UCMServer/TAND123">Tải về</a></div>`)
	})
	server := httptest.NewTLSServer(mux)
	defer server.Close()

	sink := &errorSink{}
	p := portal.NewAnlePortal(sink, newClient(t, sink, server.URL), portal.AnleParam{BaseURL: server.URL + "/"})
	assert.Equal(t, document.CollectionAnle, p.Collection())
	assert.Equal(t, portal.AnlePageSize, p.PageSize())

	listing, err := p.Listing(context.Background(), 3)
	require.Nil(t, err)
	assert.Equal(t, 21, listing.Total)
	require.Len(t, listing.Entries, 1)

	detail, err := p.Detail(context.Background(), listing.Entries[0])
	require.Nil(t, err)
	assert.Equal(t, document.SourceAnle, detail.Document.Source)
	assert.Equal(t, "Án lệ số 01/2016/AL", detail.Document.Title)
	assert.Equal(t, "01/2016/AL", detail.Document.SerialNumber)
	assert.Equal(t, "Dân sự", detail.Document.Sector)
	assert.Equal(t, []string{server.URL + "/UCMServer/TAND123"}, detail.AttachmentURLs)
	assert.Nil(t, detail.Blocks)

	edges, err := p.Related(context.Background(), "TAND123")
	assert.Nil(t, err)
	assert.Empty(t, edges)
}

func TestTvplFallback(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/page/tim-van-ban.aspx", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("keyword") {
		case "Luật Đất đai 2013":
			fmt.Fprint(w, `<p class="nqTitle"><a href="/van-ban/khac.aspx">Nghị quyết về giá đất</a></p>
				<p class="nqTitle"><a href="/van-ban/luat-dat-dai.aspx">Luật Đất Đai 2013</a></p>`)
		default:
			fmt.Fprint(w, `<p>Không tìm thấy</p>`)
		}
	})
	mux.HandleFunc("/van-ban/luat-dat-dai.aspx", htmlHandler(`<div class="content1"><p>Điều 1. Phạm vi</p></div>`))
	mux.HandleFunc("/van-ban/khac.aspx", func(w http.ResponseWriter, r *http.Request) {
		t.Error("dissimilar hit must not be fetched")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	sink := &errorSink{}
	fallback := portal.NewTvplFallback(sink, newClient(t, sink, server.URL), extractor.NewDomExtractor(sink))

	result, found, err := fallback.FullText(context.Background(), &document.Document{ID: "1", Title: "Luật Đất đai 2013"})
	require.Nil(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"Điều 1. Phạm vi"}, result.Blocks())

	_, found, err = fallback.FullText(context.Background(), &document.Document{ID: "2", Title: "Thông tư 01", SerialNumber: "01/2020/TT"})
	require.Nil(t, err)
	assert.False(t, found)
}

func TestTvplFallback_HitWithoutBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/page/tim-van-ban.aspx", htmlHandler(`<p class="nqTitle"><a href="/van-ban/a.aspx">Thông tư 01</a></p>`))
	mux.HandleFunc("/van-ban/a.aspx", htmlHandler(`<html><body>Yêu cầu đăng nhập</body></html>`))
	server := httptest.NewServer(mux)
	defer server.Close()

	sink := &errorSink{}
	fallback := portal.NewTvplFallback(sink, newClient(t, sink, server.URL), extractor.NewDomExtractor(sink))

	_, found, err := fallback.FullText(context.Background(), &document.Document{ID: "3", Title: "Thông tư 01"})
	require.Nil(t, err)
	assert.False(t, found)
}
