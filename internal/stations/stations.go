// Package stations holds the fixed ASOS station directory and the wind
// direction codebook used to label hourly observations.
package stations

import (
	"errors"
	"fmt"

	"github.com/lox/asosingest/internal/models"
)

// Directory is an ordered list of stations. Iteration order drives both the
// fetch loop and the row order of the merged table.
type Directory []models.Station

// Name returns the display name for a station id.
func (d Directory) Name(id int) (string, bool) {
	for _, st := range d {
		if st.ID == id {
			return st.Name, true
		}
	}
	return "", false
}

// Default is the full set of ASOS stations ingested every hour.
var Default = Directory{
	{ID: 90, Name: "Sokcho"},
	{ID: 93, Name: "Bukchuncheon"},
	{ID: 95, Name: "Cheorwon"},
	{ID: 98, Name: "Dongducheon"},
	{ID: 99, Name: "Paju"},
	{ID: 100, Name: "Daegwallyeong"},
	{ID: 101, Name: "Chuncheon"},
	{ID: 102, Name: "Baengnyeongdo"},
	{ID: 104, Name: "Bukgangneung"},
	{ID: 105, Name: "Gangneung"},
	{ID: 106, Name: "Donghae"},
	{ID: 108, Name: "Seoul"},
	{ID: 112, Name: "Incheon"},
	{ID: 114, Name: "Wonju"},
	{ID: 115, Name: "Ulleungdo"},
	{ID: 119, Name: "Suwon"},
	{ID: 121, Name: "Yeongwol"},
	{ID: 127, Name: "Chungju"},
	{ID: 129, Name: "Seosan"},
	{ID: 130, Name: "Uljin"},
	{ID: 131, Name: "Cheongju"},
	{ID: 133, Name: "Daejeon"},
	{ID: 135, Name: "Chupungnyeong"},
	{ID: 136, Name: "Andong"},
	{ID: 137, Name: "Sangju"},
	{ID: 138, Name: "Pohang"},
	{ID: 140, Name: "Gunsan"},
	{ID: 143, Name: "Daegu"},
	{ID: 146, Name: "Jeonju"},
	{ID: 152, Name: "Ulsan"},
	{ID: 155, Name: "Changwon"},
	{ID: 156, Name: "Gwangju"},
	{ID: 159, Name: "Busan"},
	{ID: 162, Name: "Tongyeong"},
	{ID: 165, Name: "Mokpo"},
	{ID: 168, Name: "Yeosu"},
	{ID: 169, Name: "Heuksando"},
	{ID: 170, Name: "Wando"},
	{ID: 172, Name: "Gochang"},
	{ID: 174, Name: "Suncheon"},
	{ID: 177, Name: "Hongseong"},
	{ID: 184, Name: "Jeju"},
	{ID: 185, Name: "Gosan"},
	{ID: 188, Name: "Seongsan"},
	{ID: 189, Name: "Seogwipo"},
	{ID: 192, Name: "Jinju"},
	{ID: 201, Name: "Ganghwa"},
	{ID: 202, Name: "Yangpyeong"},
	{ID: 203, Name: "Icheon"},
	{ID: 211, Name: "Inje"},
	{ID: 212, Name: "Hongcheon"},
	{ID: 216, Name: "Taebaek"},
	{ID: 217, Name: "Jeongseon"},
	{ID: 221, Name: "Jecheon"},
	{ID: 226, Name: "Boeun"},
	{ID: 232, Name: "Cheonan"},
	{ID: 235, Name: "Boryeong"},
	{ID: 236, Name: "Buyeo"},
	{ID: 238, Name: "Geumsan"},
	{ID: 239, Name: "Sejong"},
	{ID: 243, Name: "Buan"},
	{ID: 244, Name: "Imsil"},
	{ID: 245, Name: "Jeongeup"},
	{ID: 247, Name: "Namwon"},
	{ID: 248, Name: "Jangsu"},
	{ID: 251, Name: "Gochang"},
	{ID: 252, Name: "Yeonggwang"},
	{ID: 253, Name: "Gimhae"},
	{ID: 254, Name: "Sunchang"},
	{ID: 255, Name: "Bukchangwon"},
	{ID: 257, Name: "Yangsan"},
	{ID: 258, Name: "Boseong"},
	{ID: 259, Name: "Gangjin"},
	{ID: 260, Name: "Jangheung"},
	{ID: 261, Name: "Haenam"},
	{ID: 262, Name: "Goheung"},
	{ID: 263, Name: "Uiryeong"},
	{ID: 264, Name: "Hamyang"},
	{ID: 266, Name: "Gwangyang"},
	{ID: 268, Name: "Jindo"},
	{ID: 271, Name: "Bonghwa"},
	{ID: 272, Name: "Yeongju"},
	{ID: 273, Name: "Mungyeong"},
	{ID: 276, Name: "Cheongsong"},
	{ID: 277, Name: "Yeongdeok"},
	{ID: 278, Name: "Uiseong"},
	{ID: 279, Name: "Gumi"},
	{ID: 281, Name: "Yeongcheon"},
	{ID: 283, Name: "Gyeongju"},
	{ID: 284, Name: "Geochang"},
	{ID: 285, Name: "Hapcheon"},
	{ID: 288, Name: "Miryang"},
	{ID: 289, Name: "Sancheong"},
	{ID: 294, Name: "Geoje"},
	{ID: 295, Name: "Namhae"},
}

var ErrUnknownWindDirection = errors.New("unknown wind direction code")

var windDirections = map[int]string{
	0:   "N",
	20:  "NNE",
	50:  "NE",
	70:  "ENE",
	90:  "E",
	110: "ESE",
	140: "SE",
	160: "SSE",
	180: "S",
	200: "SSW",
	230: "SW",
	250: "WSW",
	270: "W",
	290: "WNW",
	320: "NW",
	340: "NNW",
	360: "N",
}

// WindDirection maps a compass-bearing code to its 16-point label. Codes
// outside the codebook are an error, never a default label.
func WindDirection(code int) (string, error) {
	name, ok := windDirections[code]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrUnknownWindDirection, code)
	}
	return name, nil
}
