package query

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// knownCities seeds the hint list. Duplicate names across countries are not
// disambiguated; the provider decides which one it returns.
var knownCities = []string{
	"北京", "上海", "天津", "重庆", "广州", "深圳", "杭州", "南京", "苏州", "成都",
	"武汉", "西安", "长沙", "郑州", "青岛", "济南", "沈阳", "大连", "哈尔滨", "长春",
	"厦门", "福州", "昆明", "贵阳", "南宁", "海口", "三亚", "拉萨", "乌鲁木齐", "兰州",
	"西宁", "银川", "呼和浩特", "太原", "石家庄", "合肥", "南昌", "宁波", "无锡", "珠海",
	"东莞", "佛山", "香港", "澳门", "台北", "高雄",
	"东京", "大阪", "首尔", "新加坡", "曼谷", "伦敦", "巴黎", "柏林", "纽约", "洛杉矶",
	"旧金山", "悉尼", "墨尔本", "莫斯科", "多伦多", "温哥华",
	"Beijing", "Shanghai", "Guangzhou", "Shenzhen", "Hangzhou", "Chengdu", "Wuhan",
	"Hong Kong", "Taipei", "Tokyo", "Osaka", "Seoul", "Singapore", "Bangkok",
	"London", "Paris", "Berlin", "Madrid", "Rome", "Amsterdam", "Vienna", "Moscow",
	"New York", "Los Angeles", "San Francisco", "Chicago", "Seattle", "Boston",
	"Toronto", "Vancouver", "Sydney", "Melbourne", "Dubai", "Mumbai", "Delhi",
}

// cityIndex matches known city names, longest first.
type cityIndex struct {
	names []string
	latin map[string]*regexp.Regexp
}

func newCityIndex(extra ...string) *cityIndex {
	seen := make(map[string]bool)
	idx := &cityIndex{latin: make(map[string]*regexp.Regexp)}
	for _, name := range append(append([]string{}, knownCities...), extra...) {
		name = strings.TrimSpace(name)
		if name == "" || seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true
		idx.names = append(idx.names, name)
		if isLatin(name) {
			idx.latin[name] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`)
		}
	}
	sort.SliceStable(idx.names, func(i, j int) bool {
		return len([]rune(idx.names[i])) > len([]rune(idx.names[j]))
	})
	return idx
}

func (c *cityIndex) match(text string) string {
	for _, name := range c.names {
		if re, ok := c.latin[name]; ok {
			if re.MatchString(text) {
				return name
			}
			continue
		}
		if strings.Contains(text, name) {
			return name
		}
	}
	return ""
}

func isLatin(s string) bool {
	for _, r := range s {
		if r > unicode.MaxLatin1 {
			return false
		}
	}
	return true
}

var (
	weatherWordRe  = regexp.MustCompile(`天气|气温|温度|预报|下雨|下雪|冷不冷|热不热`)
	hanLeadRe      = regexp.MustCompile(`^(?:请问|请|麻烦|帮我|帮忙|给我|我想知道|想知道|告诉我|查询|查一下|查查|查|看看|看一下|问一下|今天|明天|后天|现在|目前|最近|未来|接下来)+`)
	hanTrailRe     = regexp.MustCompile(`(?:的|今天|明天|后天|今日|明日|现在|目前|当前|实时|最近|未来|接下来|这几天|一下|市)+$`)
	hanCityRe      = regexp.MustCompile(`^\p{Han}{2,10}$`)
	latinPrepRe    = regexp.MustCompile(`(?i)\b(?:in|for|at|of)\s+`)
	latinPhraseRe  = regexp.MustCompile(`(?i)^[a-z][a-z.'-]*(?:\s+[a-z][a-z.'-]*){0,3}`)
	latinLeadingRe = regexp.MustCompile(`(?i)^\s*([a-z][a-z.'-]*(?:\s+[a-z][a-z.'-]*){0,3}?)\s+(?:weather|forecast)\b`)
)

var latinStopWords = map[string]bool{
	"a": true, "an": true, "the": true, "this": true, "next": true, "coming": true,
	"today": true, "tomorrow": true, "tonight": true, "now": true, "right": true,
	"currently": true, "please": true, "weather": true, "forecast": true, "like": true,
	"day": true, "days": true, "week": true, "weeks": true, "few": true, "several": true,
	"what": true, "what's": true, "whats": true, "how": true, "how's": true, "is": true,
	"it": true, "me": true, "tell": true, "show": true, "get": true, "give": true,
	"current": true, "in": true, "for": true, "at": true, "of": true, "on": true,
	"over": true, "and": true, "with": true,
}

// extract finds a city token: known names first, then particle stripping.
func (c *cityIndex) extract(text string) string {
	if name := c.match(text); name != "" {
		return name
	}
	if city := stripHan(text); city != "" {
		return city
	}
	return stripLatin(text)
}

func stripHan(text string) string {
	loc := weatherWordRe.FindStringIndex(text)
	if loc == nil {
		return ""
	}
	candidate := strings.Join(strings.Fields(text[:loc[0]]), "")
	candidate = strings.TrimFunc(candidate, unicode.IsPunct)
	candidate = hanLeadRe.ReplaceAllString(candidate, "")
	candidate = hanTrailRe.ReplaceAllString(candidate, "")
	if !hanCityRe.MatchString(candidate) {
		return ""
	}
	return candidate
}

func stripLatin(text string) string {
	for _, loc := range latinPrepRe.FindAllStringIndex(text, -1) {
		phrase := latinPhraseRe.FindString(text[loc[1]:])
		if city := trimStopWords(phrase); city != "" {
			return city
		}
	}
	if m := latinLeadingRe.FindStringSubmatch(text); m != nil {
		return trimStopWords(m[1])
	}
	return ""
}

// trimStopWords keeps the leading run of words that are not stop words.
func trimStopWords(phrase string) string {
	var kept []string
	for _, w := range strings.Fields(phrase) {
		w = strings.Trim(w, ".'-")
		if w == "" || latinStopWords[strings.ToLower(w)] {
			break
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}
