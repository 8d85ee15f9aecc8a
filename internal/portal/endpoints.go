package portal

import (
	"net/url"
	"strconv"

	"github.com/rohmanhakim/vnlaw-crawler/internal/document"
)

const (
	DefaultVbplPageSize = 130
	AnlePageSize        = 10
)

// vbpl detail tabs
const (
	tabProperties        = "thuoctinh"
	tabPropertiesHopNhat = "thuoctinhhn"
	tabFullText          = "toanvan"
	tabFullTextHopNhat   = "toanvanhn"
	tabOriginalHopNhat   = "van-ban-goc"
	tabRelated           = "vanbanlienquan"
	tabCrossRef          = "luocdo"
	tabCrossRefHopNhat   = "luocdohn"
)

const (
	anleListingPath = "/webcenter/portal/anle/anle"
	anleDetailPath  = "/webcenter/portal/anle/chitietanle"
	tvplSearchPath  = "/page/tim-van-ban.aspx"
)

// vbplListingPath returns the search control that lists collection.
func vbplListingPath(collection document.Collection) string {
	control := "p_KetQuaTimKiemVanBan"
	if collection == document.CollectionHopNhat {
		control = "p_KetQuaTimKiemHopNhat"
	}
	return "/VBQPPL_UserControls/Publishing_22/TimKiem/" + control + ".aspx"
}

func vbplListingQuery(page, pageSize int, keyword string) url.Values {
	query := url.Values{
		"IsVietNamese": {"True"},
		"RowPerPage":   {strconv.Itoa(pageSize)},
		"Page":         {strconv.Itoa(page)},
	}
	if keyword != "" {
		query.Set("Keyword", keyword)
	}
	return query
}

func vbplTabPath(tab string) string {
	return "/TW/Pages/vbpq-" + tab + ".aspx"
}

func itemQuery(id string) url.Values {
	return url.Values{"ItemID": {id}}
}

func anleListingQuery(page int) url.Values {
	return url.Values{
		"selectedPage": {strconv.Itoa(page)},
		"docType":      {"AnLe"},
		"hieuLuc":      {"1"},
	}
}

func anleDetailQuery(id string) url.Values {
	return url.Values{
		"dDocName":       {id},
		"_afrWindowMode": {"0"},
	}
}

func tvplSearchQuery(keyword string) url.Values {
	return url.Values{
		"keyword": {keyword},
		"sort":    {"1"},
	}
}
