// Package inmemdb keeps every repository in process memory. It backs the tests and `--inmem` dev runs.
package inmemdb

import (
	"github.com/trezcool/yuva/core/announcement"
	"github.com/trezcool/yuva/core/appointment"
	"github.com/trezcool/yuva/core/attendance"
	"github.com/trezcool/yuva/core/branchreport"
	"github.com/trezcool/yuva/core/calendar"
	"github.com/trezcool/yuva/core/carelog"
	"github.com/trezcool/yuva/core/child"
	"github.com/trezcool/yuva/core/duty"
	"github.com/trezcool/yuva/core/fee"
	"github.com/trezcool/yuva/core/feed"
	"github.com/trezcool/yuva/core/incident"
	"github.com/trezcool/yuva/core/menu"
	"github.com/trezcool/yuva/core/message"
	"github.com/trezcool/yuva/core/request"
	"github.com/trezcool/yuva/core/task"
	"github.com/trezcool/yuva/core/transport"
	"github.com/trezcool/yuva/core/user"
)

type DB struct {
	users            *table[user.User]
	children         *table[child.Child]
	attendance       *table[attendance.Attendance]
	mealLogs         *table[carelog.MealLog]
	sleepLogs        *table[carelog.SleepLog]
	dailyReports     *table[carelog.DailyReport]
	announcements    *table[announcement.Announcement]
	messages         *table[message.Message]
	calendarEvents   *table[calendar.Event]
	appointments     *table[appointment.Appointment]
	reminders        *table[appointment.Reminder]
	fees             *table[fee.Fee]
	paymentReminders *table[fee.PaymentReminder]
	vehicles         *table[transport.Vehicle]
	routes           *table[transport.Route]
	locations        *table[transport.Location]
	incidents        *table[incident.Incident]
	requests         *table[request.Request]
	tasks            *table[task.Task]
	taskResponses    *table[task.Response]
	menus            *table[menu.Menu]
	dutyDescriptions *table[duty.Description]
	dutySchedules    *table[duty.Schedule]
	branchReports    *table[branchreport.Report]
	feedPosts        *table[feed.Post]
}

func Open() *DB {
	return &DB{
		users:            newTable[user.User](),
		children:         newTable[child.Child](),
		attendance:       newTable[attendance.Attendance](),
		mealLogs:         newTable[carelog.MealLog](),
		sleepLogs:        newTable[carelog.SleepLog](),
		dailyReports:     newTable[carelog.DailyReport](),
		announcements:    newTable[announcement.Announcement](),
		messages:         newTable[message.Message](),
		calendarEvents:   newTable[calendar.Event](),
		appointments:     newTable[appointment.Appointment](),
		reminders:        newTable[appointment.Reminder](),
		fees:             newTable[fee.Fee](),
		paymentReminders: newTable[fee.PaymentReminder](),
		vehicles:         newTable[transport.Vehicle](),
		routes:           newTable[transport.Route](),
		locations:        newTable[transport.Location](),
		incidents:        newTable[incident.Incident](),
		requests:         newTable[request.Request](),
		tasks:            newTable[task.Task](),
		taskResponses:    newTable[task.Response](),
		menus:            newTable[menu.Menu](),
		dutyDescriptions: newTable[duty.Description](),
		dutySchedules:    newTable[duty.Schedule](),
		branchReports:    newTable[branchreport.Report](),
		feedPosts:        newTable[feed.Post](),
	}
}

// Reset empties every table.
func (db *DB) Reset() {
	db.users.reset()
	db.children.reset()
	db.attendance.reset()
	db.mealLogs.reset()
	db.sleepLogs.reset()
	db.dailyReports.reset()
	db.announcements.reset()
	db.messages.reset()
	db.calendarEvents.reset()
	db.appointments.reset()
	db.reminders.reset()
	db.fees.reset()
	db.paymentReminders.reset()
	db.vehicles.reset()
	db.routes.reset()
	db.locations.reset()
	db.incidents.reset()
	db.requests.reset()
	db.tasks.reset()
	db.taskResponses.reset()
	db.menus.reset()
	db.dutyDescriptions.reset()
	db.dutySchedules.reset()
	db.branchReports.reset()
	db.feedPosts.reset()
}

// Close is a no-op; it lets the container treat both databases alike.
func (db *DB) Close() error { return nil }
