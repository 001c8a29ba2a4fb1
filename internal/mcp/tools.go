package mcp

import (
	"context"
	"fmt"
	"slices"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetStatusInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	st, err := s.ctl.GetStatus()
	if err != nil {
		return nil, StatusOutput{}, err
	}
	return nil, StatusOutput{
		Profile:        st.Profile,
		Profiles:       st.Profiles,
		Display:        st.Display,
		WorkArea:       st.WorkArea,
		Rows:           st.Rows,
		Columns:        st.Columns,
		PickerOpen:     st.PickerOpen,
		QuickResize:    st.QuickResize,
		ActiveWindow:   st.ActiveWindow,
		PreviousResize: st.PreviousResize,
		UptimeSeconds:  st.UptimeSeconds,
	}, nil
}

// handleOpenPicker checks the picker state first because the main hotkey
// toggles: sending it to an open picker would close it.
func (s *Server) handleOpenPicker(_ context.Context, _ *mcpsdk.CallToolRequest, _ ActionInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	st, err := s.ctl.GetStatus()
	if err != nil {
		return nil, ActionOutput{}, err
	}
	if st.PickerOpen {
		return nil, ActionOutput{Action: "open_picker", Message: "picker already open"}, nil
	}
	return s.hotkey("open_picker", "main", "picker opened")
}

func (s *Server) handleQuickResize(_ context.Context, _ *mcpsdk.CallToolRequest, _ ActionInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	return s.hotkey("quick_resize", "quick_resize", "quick picker opened")
}

func (s *Server) handleMaximize(_ context.Context, _ *mcpsdk.CallToolRequest, _ ActionInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	return s.hotkey("maximize_window", "maximize", "maximize toggled")
}

func (s *Server) handleMinimize(_ context.Context, _ *mcpsdk.CallToolRequest, _ ActionInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	return s.hotkey("minimize_window", "minimize", "window minimized")
}

func (s *Server) handleSwitchProfile(_ context.Context, _ *mcpsdk.CallToolRequest, args SwitchProfileInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if args.Name == "" {
		return nil, ActionOutput{}, fmt.Errorf("name is required")
	}
	st, err := s.ctl.GetStatus()
	if err != nil {
		return nil, ActionOutput{}, err
	}
	if !slices.Contains(st.Profiles, args.Name) {
		return nil, ActionOutput{}, fmt.Errorf("unknown profile %q (available: %v)", args.Name, st.Profiles)
	}
	if err := s.ctl.SwitchProfile(args.Name); err != nil {
		return nil, ActionOutput{}, err
	}
	s.logger.Info("profile switched", "profile", args.Name)
	return nil, ActionOutput{Action: "switch_profile", Message: "active profile is " + args.Name}, nil
}

func (s *Server) hotkey(action, kind, message string) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if err := s.ctl.Hotkey(kind); err != nil {
		return nil, ActionOutput{}, fmt.Errorf("%s: %w", action, err)
	}
	s.logger.Debug("tool call", "action", action)
	return nil, ActionOutput{Action: action, Message: message}, nil
}
