package usage

import "time"

const periodLength = 30 * 24 * time.Hour

func defaultUsage() Usage {
	return Usage{
		Plan:     "Starter",
		Limit:    1000,
		Used:     0,
		ResetsAt: time.Now().UTC().Add(periodLength),
	}
}
