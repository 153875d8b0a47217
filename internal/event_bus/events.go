package event_bus

const (
	ScheduleEventsCreatedType EventType = "schedule.events.created"
	ScheduleEventUpdatedType  EventType = "schedule.event.updated"
	ScheduleEventDeletedType  EventType = "schedule.event.deleted"
)

// ScheduleEventsCreated is published once per successful create_events batch.
type ScheduleEventsCreated struct {
	UserId int
	Count  int
}

type ScheduleEventUpdated struct {
	UserId int
	UID    string
	Title  string
}

type ScheduleEventDeleted struct {
	UserId int
	UID    string
}
