package schedule_tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/planweave/planweave/pkg/preferences"
	"github.com/planweave/planweave/pkg/schedule"
	"github.com/planweave/planweave/pkg/user"
)

// Error kind prefixes surfaced to the agent. The model retries or rephrases
// based on these, so they stay stable even when the message text changes.
const (
	kindUnauthenticated  = "Unauthenticated"
	kindInvalidRange     = "InvalidRange"
	kindMalformedInput   = "MalformedInput"
	kindInvalidEvent     = "InvalidEvent"
	kindNotFound         = "NotFound"
	kindStoreUnavailable = "StoreUnavailable"
)

type eventResult struct {
	Id           string `json:"id"`
	Title        string `json:"title"`
	StartInstant string `json:"startInstant"`
	EndInstant   string `json:"endInstant"`
	StartLocal   string `json:"startLocal,omitempty"`
	EndLocal     string `json:"endLocal,omitempty"`
	Memo         string `json:"memo,omitempty"`
	Source       string `json:"source"`
}

const localTimeFormat = "Mon 2006-01-02 15:04 MST"

// toEventResult renders the canonical instants plus, when a timezone is
// known, a localized form for display back to the user. loc may be nil.
func toEventResult(ev schedule.Event, loc *time.Location) eventResult {
	result := eventResult{
		Id:           ev.UID.String(),
		Title:        ev.Title,
		StartInstant: ev.StartTime.UTC().Format(time.RFC3339),
		EndInstant:   ev.EndTime.UTC().Format(time.RFC3339),
		Memo:         ev.Memo,
		Source:       string(ev.Source),
	}
	if loc != nil {
		result.StartLocal = ev.StartTime.In(loc).Format(localTimeFormat)
		result.EndLocal = ev.EndTime.In(loc).Format(localTimeFormat)
	}
	return result
}

// RegisterScheduleTools registers the four schedule tools with the MCP server.
// prefsService is used only to localize instants in query results; it may be
// nil, in which case results carry canonical instants only.
func RegisterScheduleTools(s *mcpserver.MCPServer, scheduleService schedule.Service, prefsService preferences.Service) {
	queryScheduleTool := mcp.NewTool("query_schedule",
		mcp.WithDescription("List the user's events starting within an instant range, ordered by start. Read-only."),
		mcp.WithString("startInstant",
			mcp.Required(),
			mcp.Description("Range start as an RFC3339 instant, e.g. 2026-03-01T00:00:00Z"),
		),
		mcp.WithString("endInstant",
			mcp.Required(),
			mcp.Description("Range end as an RFC3339 instant, inclusive"),
		),
	)
	s.AddTool(queryScheduleTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleQuerySchedule(ctx, request, scheduleService, prefsService)
	})

	createEventsTool := mcp.NewTool("create_events",
		mcp.WithDescription("Create one or more events in a single atomic batch. "+
			"If any event is invalid, nothing is created and the whole call fails, so the identical batch can be retried. "+
			"Each event needs title, startInstant and endInstant (RFC3339); memo is optional."),
		mcp.WithArray("events",
			mcp.Required(),
			mcp.Description("Events to create. Also accepts a JSON-encoded array string."),
		),
	)
	s.AddTool(createEventsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleCreateEvents(ctx, request, scheduleService)
	})

	updateEventTool := mcp.NewTool("update_event",
		mcp.WithDescription("Modify fields of an existing event. Only fields present in the patch change; "+
			"omitted fields keep their value. Set memo to null to clear it."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("The event id returned by query_schedule"),
		),
		mcp.WithObject("patch",
			mcp.Required(),
			mcp.Description("Fields to change: title, startInstant, endInstant, memo. Also accepts a JSON-encoded object string."),
		),
	)
	s.AddTool(updateEventTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleUpdateEvent(ctx, request, scheduleService)
	})

	deleteEventTool := mcp.NewTool("delete_event",
		mcp.WithDescription("Delete an event by id. Deleting an id that does not exist (including a second delete of the same id) fails with NotFound."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("The event id to delete"),
		),
	)
	s.AddTool(deleteEventTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleDeleteEvent(ctx, request, scheduleService)
	})
}

func handleQuerySchedule(ctx context.Context, request mcp.CallToolRequest, scheduleService schedule.Service, prefsService preferences.Service) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	from, err := instantArg(args, "startInstant")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", kindInvalidRange, err)), nil
	}
	to, err := instantArg(args, "endInstant")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", kindInvalidRange, err)), nil
	}

	events, err := scheduleService.QuerySchedule(ctx, from, to)
	if err != nil {
		return toolError(err), nil
	}

	results := make([]eventResult, 0, len(events))
	loc := preferredLocation(ctx, prefsService)
	for _, ev := range events {
		results = append(results, toEventResult(ev, loc))
	}
	encoded, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(encoded)), nil
}

// preferredLocation resolves the caller's preference timezone, best effort.
// Localization is cosmetic, so failures degrade to nil rather than failing
// the read.
func preferredLocation(ctx context.Context, prefsService preferences.Service) *time.Location {
	if prefsService == nil {
		return nil
	}
	prefs, err := prefsService.GetCurrent(ctx)
	if err != nil {
		return nil
	}
	loc, err := time.LoadLocation(prefs.Timezone)
	if err != nil {
		return nil
	}
	return loc
}

func handleCreateEvents(ctx context.Context, request mcp.CallToolRequest, scheduleService schedule.Service) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	items, err := eventItems(args["events"])
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", kindMalformedInput, err)), nil
	}

	drafts := make([]schedule.EventDraft, 0, len(items))
	for i, item := range items {
		draft, err := draftFromItem(item)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("%s: event %d: %v", kindInvalidEvent, i+1, err)), nil
		}
		drafts = append(drafts, draft)
	}

	count, err := scheduleService.CreateEvents(ctx, drafts)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Created %d event(s)", count)), nil
}

func handleUpdateEvent(ctx context.Context, request mcp.CallToolRequest, scheduleService schedule.Service) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	uid, err := eventIdArg(args)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", kindMalformedInput, err)), nil
	}

	patch, err := patchFromArg(args["patch"])
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", kindMalformedInput, err)), nil
	}

	updated, err := scheduleService.UpdateEvent(ctx, uid, patch)
	if err != nil {
		return toolError(err), nil
	}

	encoded, _ := json.MarshalIndent(toEventResult(updated, nil), "", "  ")
	return mcp.NewToolResultText(string(encoded)), nil
}

func handleDeleteEvent(ctx context.Context, request mcp.CallToolRequest, scheduleService schedule.Service) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	uid, err := eventIdArg(args)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", kindMalformedInput, err)), nil
	}

	if err := scheduleService.DeleteEvent(ctx, uid); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Event %s deleted", uid)), nil
}

func instantArg(args map[string]interface{}, key string) (time.Time, error) {
	raw, ok := args[key].(string)
	if !ok || raw == "" {
		return time.Time{}, fmt.Errorf("%s is required", key)
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s is not a valid RFC3339 instant: %v", key, err)
	}
	return t, nil
}

func eventIdArg(args map[string]interface{}) (uuid.UUID, error) {
	raw, ok := args["id"].(string)
	if !ok || raw == "" {
		return uuid.UUID{}, errors.New("id is required")
	}
	uid, err := uuid.Parse(raw)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("id is not a valid event id: %v", err)
	}
	return uid, nil
}

// eventItems normalizes the events argument. Some clients send the array, or
// individual elements, serialized as JSON strings instead of structured
// values; all of these forms are accepted.
func eventItems(raw interface{}) ([]map[string]interface{}, error) {
	var list []interface{}
	switch v := raw.(type) {
	case []interface{}:
		list = v
	case string:
		if err := json.Unmarshal([]byte(v), &list); err != nil {
			return nil, fmt.Errorf("events is not a valid JSON array: %v", err)
		}
	case nil:
		return nil, errors.New("events is required")
	default:
		return nil, errors.New("events must be an array")
	}

	items := make([]map[string]interface{}, 0, len(list))
	for i, el := range list {
		switch item := el.(type) {
		case map[string]interface{}:
			items = append(items, item)
		case string:
			var decoded map[string]interface{}
			if err := json.Unmarshal([]byte(item), &decoded); err != nil {
				return nil, fmt.Errorf("events[%d] is not a valid JSON object: %v", i, err)
			}
			items = append(items, decoded)
		default:
			return nil, fmt.Errorf("events[%d] must be an object", i)
		}
	}
	return items, nil
}

func draftFromItem(item map[string]interface{}) (schedule.EventDraft, error) {
	title, _ := item["title"].(string)

	start, err := instantArg(item, "startInstant")
	if err != nil {
		return schedule.EventDraft{}, err
	}
	end, err := instantArg(item, "endInstant")
	if err != nil {
		return schedule.EventDraft{}, err
	}

	memo, _ := item["memo"].(string)
	source, _ := item["source"].(string)

	return schedule.EventDraft{
		Title:     title,
		StartTime: start,
		EndTime:   end,
		Memo:      memo,
		Source:    schedule.Source(source),
	}, nil
}

// patchFromArg builds the sparse patch. Key presence decides whether a field
// changes; an explicit null memo clears it, an absent memo leaves it alone.
func patchFromArg(raw interface{}) (schedule.EventPatch, error) {
	var fields map[string]interface{}
	switch v := raw.(type) {
	case map[string]interface{}:
		fields = v
	case string:
		if err := json.Unmarshal([]byte(v), &fields); err != nil {
			return schedule.EventPatch{}, fmt.Errorf("patch is not a valid JSON object: %v", err)
		}
	case nil:
		return schedule.EventPatch{}, errors.New("patch is required")
	default:
		return schedule.EventPatch{}, errors.New("patch must be an object")
	}

	var patch schedule.EventPatch

	if raw, ok := fields["title"]; ok {
		title, ok := raw.(string)
		if !ok {
			return schedule.EventPatch{}, errors.New("patch.title must be a string")
		}
		patch.Title = &title
	}
	if _, ok := fields["startInstant"]; ok {
		start, err := instantArg(fields, "startInstant")
		if err != nil {
			return schedule.EventPatch{}, fmt.Errorf("patch.%v", err)
		}
		patch.StartTime = &start
	}
	if _, ok := fields["endInstant"]; ok {
		end, err := instantArg(fields, "endInstant")
		if err != nil {
			return schedule.EventPatch{}, fmt.Errorf("patch.%v", err)
		}
		patch.EndTime = &end
	}
	if raw, ok := fields["memo"]; ok {
		switch memo := raw.(type) {
		case string:
			patch.Memo = &memo
		case nil:
			empty := ""
			patch.Memo = &empty
		default:
			return schedule.EventPatch{}, errors.New("patch.memo must be a string or null")
		}
	}

	return patch, nil
}

// toolError maps domain errors to kind-prefixed tool errors. Unknown errors
// are reported as StoreUnavailable so the agent tells the user to retry later
// instead of inventing a cause.
func toolError(err error) *mcp.CallToolResult {
	kind := kindStoreUnavailable
	switch {
	case errors.Is(err, user.ErrNoUser):
		kind = kindUnauthenticated
	case errors.Is(err, schedule.ErrInvalidRange):
		kind = kindInvalidRange
	case errors.Is(err, schedule.ErrMalformedInput):
		kind = kindMalformedInput
	case errors.Is(err, schedule.ErrInvalidEvent):
		kind = kindInvalidEvent
	case errors.Is(err, schedule.ErrEventNotFound):
		kind = kindNotFound
	}
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v", kind, err))
}
