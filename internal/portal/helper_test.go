package portal_test

import (
	"context"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/rohmanhakim/vnlaw-crawler/internal/access"
	"github.com/rohmanhakim/vnlaw-crawler/internal/document"
	"github.com/rohmanhakim/vnlaw-crawler/internal/extractor"
	"github.com/rohmanhakim/vnlaw-crawler/internal/metadata"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/failure"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/retry"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/timeutil"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type errorSink struct {
	metadata.NoopSink
	mu     sync.Mutex
	causes []metadata.ErrorCause
}

func (s *errorSink) RecordError(_ time.Time, _, _ string, cause metadata.ErrorCause, _ string, _ []metadata.Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.causes = append(s.causes, cause)
}

func newClient(t *testing.T, sink metadata.MetadataSink, baseURL string) *access.Client {
	t.Helper()
	u, err := url.Parse(baseURL)
	require.NoError(t, err)
	return access.NewClient(sink, access.ClientParam{
		BaseURL:        *u,
		UserAgent:      "vnlaw-crawler-test",
		DefaultTimeout: time.Second,
		RetryParam:     retry.NewRetryParam(0, 1, 1, timeutil.NewBackoffParam(time.Millisecond, 2.0, 10*time.Millisecond)),
	})
}

type fallbackMock struct {
	mock.Mock
}

func (m *fallbackMock) FullText(ctx context.Context, doc *document.Document) (extractor.ExtractionResult, bool, failure.ClassifiedError) {
	args := m.Called(ctx, doc)
	var err failure.ClassifiedError
	if e := args.Get(2); e != nil {
		err = e.(failure.ClassifiedError)
	}
	return args.Get(0).(extractor.ExtractionResult), args.Bool(1), err
}

const propertiesPage = `<html><body>
<div class="box-map"><a href="/">Trang chủ</a><a href="">Luật Đất đai 2013</a></div>
<table><tr><td class="title">Luật số 45/2013/QH13</td></tr></table>
<div class="vbProperties"><table>
<tr><td>Số ký hiệu</td><td>45/2013/QH13</td><td>Ngày ban hành</td><td>29/11/2013</td></tr>
<tr><td>Loại văn bản</td><td>Luật</td><td>Ngày có hiệu lực</td><td>01/07/2014</td></tr>
<tr><td>Ngày đăng công báo</td><td>...</td></tr>
<tr><td>Cơ quan ban hành</td><td>Quốc hội</td></tr>
<tr><td>Thông tin áp dụng</td><td>Toàn quốc</td></tr>
</table></div>
<div class="vbInfo"><ul>
<li>Hiệu lực: Hết hiệu lực toàn bộ</li>
<li>Ngày hết hiệu lực: 01/08/2024</li>
</ul></div>
<ul class="fileAttack">
<li><a href="javascript:downloadfile('Luat.pdf','/FileData/TW/Lists/vbpq/Attachments/96172/Luat dat dai.pdf');">Luat dat dai.pdf</a></li>
<li><a href="#">Xem trực tuyến</a></li>
</ul>
</body></html>`

const hopNhatPropertiesPage = `<html><body>
<div class="vbProperties"><table>
<tr><td>Số ký hiệu</td><td>07/VBHN-VPQH</td></tr>
<tr><td>Ngày xác thực</td><td>15/07/2020</td></tr>
</table></div>
</body></html>`
