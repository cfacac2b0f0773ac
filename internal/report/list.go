// Package report renders venue data for human consumption: the searchable
// HTML venue list and the plain-text menu report.
package report

import (
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/crystal-maps/venue-cli/internal/dedupe"
	"github.com/crystal-maps/venue-cli/internal/model"
)

// listRow is one venue prepared for the list template.
type listRow struct {
	Brand       string
	Branch      string
	Address     string
	Phone       string
	ExtraInfo   string
	Website     string
	MapsURL     string
	MenuSummary string
}

const listTemplate = `<!DOCTYPE html>
<html lang='tr'>
<head>
<meta charset='utf-8'>
<title>Crystal Card Mekan Listesi</title>
<style>
body { font-family: Arial, sans-serif; margin: 2rem; background: #f7f7f7; color: #222; }
h1 { margin-bottom: 0.5rem; }
p.meta { margin-top: 0; color: #555; }
input[type="search"] { padding: 0.5rem; width: 100%; max-width: 420px; margin-bottom: 1rem; }
table { width: 100%; border-collapse: collapse; background: #fff; }
th, td { padding: 0.75rem; border-bottom: 1px solid #e0e0e0; vertical-align: top; }
th { text-align: left; color: #555; font-weight: 600; }
td.name strong { font-size: 1.05rem; }
td.actions a { color: #1a73e8; text-decoration: none; }
td.actions a:hover { text-decoration: underline; }
tr:hover { background: #f0f6ff; }
.menu-note { color: #2a9d8f; font-weight: 500; }
.no-results { display: none; margin-top: 1rem; color: #777; }
</style>
<script>
document.addEventListener('DOMContentLoaded', function () {
  const input = document.querySelector('#search');
  const rows = Array.from(document.querySelectorAll('tbody tr'));
  const emptyState = document.querySelector('.no-results');

  input.addEventListener('input', function () {
    const term = input.value.trim().toLowerCase();
    let visibleCount = 0;
    rows.forEach(function (row) {
      const text = row.textContent.toLowerCase();
      const match = !term || text.includes(term);
      row.style.display = match ? '' : 'none';
      if (match) visibleCount += 1;
    });
    emptyState.style.display = visibleCount ? 'none' : '';
  });
});
</script>
</head>
<body>
<h1>Crystal Card Mekan Listesi</h1>
<p class='meta'>Google Maps bağlantılarıyla birlikte tüm kayıtları görüntüleyin. Üstteki arama kutusuyla filtreleyebilirsiniz.</p>
<input id='search' type='search' placeholder='İsim, adres veya şehir ara...'>
<table>
  <thead>
    <tr>
      <th>Mekan</th>
      <th>Bilgiler</th>
      <th>Bağlantılar</th>
    </tr>
  </thead>
  <tbody>
{{- range .Rows }}
    <tr>
      <td class='name'><strong>{{ .Brand }}</strong>{{ if .Branch }}<br>{{ .Branch }}{{ end }}</td>
      <td class='info'>{{ .Address }}{{ if .Phone }}<br>{{ .Phone }}{{ end }}{{ if .ExtraInfo }}<br>{{ .ExtraInfo }}{{ end }}{{ if .MenuSummary }}<br><span class='menu-note'>{{ .MenuSummary }}</span>{{ end }}</td>
      <td class='actions'>{{ if .MapsURL }}<a href='{{ .MapsURL }}' target='_blank' rel='noopener'>Google Maps</a>{{ end }}{{ if and .MapsURL .Website }} · {{ end }}{{ if .Website }}<a href='{{ .Website }}' target='_blank' rel='noopener'>Web</a>{{ end }}</td>
    </tr>
{{- end }}
  </tbody>
</table>
<p class='no-results'>Sonuca ulaşılamadı. Başka bir terim deneyin.</p>
</body>
</html>
`

var listTmpl = template.Must(template.New("list").Parse(listTemplate))

// WriteList renders the venue list as a standalone HTML page. Duplicate
// records collapse to their highest-quality representative first.
func WriteList(w io.Writer, venues []model.Venue) error {
	deduped := dedupe.Deduplicate(venues)
	rows := make([]listRow, 0, len(deduped))
	for i := range deduped {
		rows = append(rows, buildRow(&deduped[i]))
	}
	if err := listTmpl.Execute(w, struct{ Rows []listRow }{rows}); err != nil {
		return eris.Wrap(err, "report: render list")
	}
	return nil
}

func buildRow(v *model.Venue) listRow {
	row := listRow{Brand: v.Brand}
	if v.Branch != nil {
		row.Branch = *v.Branch
	}
	if addr := v.DisplayAddress(); addr != nil {
		row.Address = strings.TrimSpace(*addr)
	}
	if phone := v.DisplayPhone(); phone != nil {
		row.Phone = strings.TrimSpace(*phone)
	}
	if v.ExtraInfo != nil {
		row.ExtraInfo = strings.TrimSpace(*v.ExtraInfo)
	}
	if site := v.DisplayWebsite(); site != nil {
		row.Website = strings.TrimSpace(*site)
	}
	if v.GeocodeMapsURL != nil && *v.GeocodeMapsURL != "" {
		row.MapsURL = *v.GeocodeMapsURL
	} else {
		row.MapsURL = fallbackMapsURL(v)
	}
	row.MenuSummary = menuSummary(v.Menu)
	return row
}

// fallbackMapsURL builds a Google Maps search link for venues the geocoder
// never produced a canonical maps URL for.
func fallbackMapsURL(v *model.Venue) string {
	addr := v.DisplayAddress()
	if addr == nil {
		return ""
	}
	parts := []string{v.Brand}
	if v.Branch != nil && *v.Branch != "" {
		parts = append(parts, *v.Branch)
	}
	parts = append(parts, *addr)
	query := strings.Join(parts, ", ")
	return "https://www.google.com/maps/search/?api=1&query=" + url.QueryEscape(query)
}

func menuSummary(m *model.MenuDocument) string {
	if m == nil {
		return ""
	}
	var parts []string
	if n := m.ItemCount(); n > 0 {
		parts = append(parts, fmt.Sprintf("🍽️ %d menü ürünü", n))
	}
	if len(m.PDFMenus) > 0 {
		parts = append(parts, "📄 PDF menü mevcut")
	}
	if len(m.ImageMenus) > 0 {
		parts = append(parts, "🖼️ Menü görseli mevcut")
	}
	return strings.Join(parts, " · ")
}
