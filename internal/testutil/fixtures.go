package testutil

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// HoldingRow describes one row of a generated holdings table.
// An empty MarketID renders the row without a quote link.
type HoldingRow struct {
	Code     string
	MarketID string
	Name     string
	Weight   string
}

// HoldingsPage renders a holdings page payload in the upstream format.
// Passing no rows renders the no-data marker instead of a table.
//
// Example:
//
//	page := testutil.HoldingsPage("易方达蓝筹精选混合", "2024-12-31",
//	    testutil.HoldingRow{Code: "00700", MarketID: "116", Name: "腾讯控股", Weight: "9.87%"},
//	)
func HoldingsPage(fundName, reportDate string, rows ...HoldingRow) string {
	var b strings.Builder
	b.WriteString(`var apidata={ content:"<div class='box'><div class='boxitem w790'><h4 class='t'><label class='left'>`)
	if fundName != "" {
		fmt.Fprintf(&b, `<a href='http://fund.eastmoney.com/000000.html' title='%s'>%s</a>`, fundName, fundName)
	}
	b.WriteString(`&nbsp;&nbsp;股票投资明细</label><label class='right lab2 xq505'>`)
	if reportDate != "" {
		fmt.Fprintf(&b, `截止至：<font class='px12'>%s</font>`, reportDate)
	}
	b.WriteString(`</label></h4>`)

	if len(rows) == 0 {
		b.WriteString(`<div class='tipsBubble'>暂无数据</div>`)
	} else {
		b.WriteString(`<table class='w782 comm tzxq'><thead><tr><th class='first'>序号</th><th>股票代码</th><th>股票名称</th>` +
			`<th>最新价</th><th>涨跌幅</th><th class='xglj'>相关资讯</th><th class='tor'>占净值<br />比例</th>` +
			`<th class='tor'>持股数（万股）</th><th class='tor'>持仓市值（万元）</th></tr></thead><tbody>`)
		for i, r := range rows {
			b.WriteString(holdingRowHTML(i+1, r))
		}
		b.WriteString(`</tbody></table>`)
	}

	b.WriteString(`</div></div>",arryear:[2024,2023],curyear:2024};`)
	return b.String()
}

func holdingRowHTML(index int, r HoldingRow) string {
	codeCell := r.Code
	nameCell := r.Name
	if r.MarketID != "" {
		link := fmt.Sprintf("//quote.eastmoney.com/unify/r/%s.%s", r.MarketID, r.Code)
		codeCell = fmt.Sprintf("<a href='%s'>%s</a>", link, r.Code)
		nameCell = fmt.Sprintf("<a href='%s'>%s</a>", link, r.Name)
	}
	return fmt.Sprintf(
		"<tr><td>%d</td><td>%s</td><td class='tol'>%s</td><td class='tor'><span></span></td>"+
			"<td class='tor'><span></span></td><td class='xglj'>变动详情</td><td class='tor'>%s</td>"+
			"<td class='tor'>1,234.56</td><td class='tor'>98,765.43</td></tr>",
		index, codeCell, nameCell, r.Weight,
	)
}

// BasicInfoPage renders a basic-info page carrying the fund's full name.
func BasicInfoPage(fullName string) string {
	return fmt.Sprintf(
		"<table class='info w790'><tr><th>基金全称</th><td>%s</td><th>基金简称</th><td>简称</td></tr></table>",
		fullName,
	)
}

// QuoteLine renders one quote-feed line.
func QuoteLine(key string, fields ...string) string {
	return fmt.Sprintf(`var hq_str_%s="%s";`, key, strings.Join(fields, ","))
}

// AShareQuoteLine renders an A-share style line with the given previous close and price.
func AShareQuoteLine(key, name string, prevClose, price float64) string {
	return QuoteLine(key,
		name,
		fmt.Sprintf("%.2f", prevClose), // open
		fmt.Sprintf("%.2f", prevClose),
		fmt.Sprintf("%.2f", price),
		fmt.Sprintf("%.2f", price), // high
		fmt.Sprintf("%.2f", price), // low
	)
}

// HistoryRecord is one record of a generated history page.
type HistoryRecord struct {
	Date time.Time
	NAV  string
}

// HistoryPage renders a history page payload in the upstream JSON format.
func HistoryPage(pageIndex, pageSize int, records ...HistoryRecord) []byte {
	list := make([]map[string]string, 0, len(records))
	for _, r := range records {
		list = append(list, map[string]string{
			"FSRQ":  r.Date.Format("2006-01-02"),
			"DWJZ":  r.NAV,
			"LJJZ":  r.NAV,
			"JZZZL": "0.00",
		})
	}
	payload := map[string]any{
		"Data": map[string]any{
			"LSJZList": list,
		},
		"ErrCode":    0,
		"PageIndex":  pageIndex,
		"PageSize":   pageSize,
		"TotalCount": len(records),
	}
	data, _ := json.Marshal(payload)
	return data
}
