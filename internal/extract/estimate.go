package extract

// CDC growth-chart 50th-percentile lookups used when a poster carries an
// age and sex but no physical measurements. Keyed by whole years, 2-18.

var heightByAge = map[string]map[int]float64{
	"male": {
		2: 34.5, 3: 37.5, 4: 40.5, 5: 43.0, 6: 45.5, 7: 48.0, 8: 50.5, 9: 52.5,
		10: 54.5, 11: 56.5, 12: 58.5, 13: 61.0, 14: 64.0, 15: 67.0, 16: 69.0, 17: 70.0, 18: 70.5,
	},
	"female": {
		2: 34.0, 3: 37.0, 4: 40.0, 5: 42.5, 6: 45.0, 7: 47.5, 8: 50.0, 9: 52.0,
		10: 54.0, 11: 56.5, 12: 59.0, 13: 61.5, 14: 63.0, 15: 64.0, 16: 64.5, 17: 65.0, 18: 65.0,
	},
}

var weightByAge = map[string]map[int]float64{
	"male": {
		2: 28, 3: 32, 4: 36, 5: 40, 6: 45, 7: 50, 8: 56, 9: 63,
		10: 70, 11: 78, 12: 88, 13: 100, 14: 115, 15: 130, 16: 145, 17: 160, 18: 170,
	},
	"female": {
		2: 26, 3: 30, 4: 34, 5: 38, 6: 42, 7: 47, 8: 53, 9: 60,
		10: 68, 11: 78, 12: 90, 13: 105, 14: 115, 15: 120, 16: 125, 17: 130, 18: 135,
	},
}

// EstimateHeightWeight returns growth-chart height (inches) and weight
// (pounds) for an age and gender, falling back to average adult figures at
// 18 and above. Either return may be zero with ok=false when no estimate
// exists for the inputs.
func EstimateHeightWeight(age float64, gender string) (height, weight float64, ok bool) {
	ageInt := int(age)

	height = heightByAge[gender][ageInt]
	weight = weightByAge[gender][ageInt]

	if height == 0 && ageInt >= 18 {
		if gender == "male" {
			height = 68.0
		} else if gender == "female" {
			height = 64.0
		}
	}
	if weight == 0 && ageInt >= 18 {
		if gender == "male" {
			weight = 170.0
		} else if gender == "female" {
			weight = 140.0
		}
	}
	return height, weight, height != 0 || weight != 0
}
