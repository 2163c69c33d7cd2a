package application

import "expvar"

// Counters published on /api/debug/vars.
var (
	signupsTotal       = expvar.NewInt("auth_signups_total")
	signinsTotal       = expvar.NewInt("auth_signins_total")
	signinFailures     = expvar.NewInt("auth_signin_failures_total")
	subscriptionsTotal = expvar.NewInt("subscriptions_activated_total")
	enrollmentsTotal   = expvar.NewInt("enrollments_total")
	coursesCreated     = expvar.NewInt("courses_created_total")
)
