package timetable

// DefaultTable is the built-in ranked timer set, used whenever the
// modes directory does not provide one. Offsets follow the standard
// map rotation; objective entries carry respawn metadata so recorded
// kills produce window predictions.
func DefaultTable(mode string) *Table {
	entries := []Entry{
		// early game (0:00 - 5:00)
		{Name: "game_start", Offset: 0, Category: CategoryEarlyGame, Messages: []string{
			"Welcome to Predecessor. Get ready for battle",
			"Match is live, good luck out there",
		}},
		{Name: "early_ward_reminder", Offset: 120, Category: CategoryReminder, Messages: []string{
			"Place wards for vision control",
		}},
		{Name: "first_gold_warning", Offset: 150, Category: CategoryBuff, Messages: []string{
			"30 seconds until first gold and cyan buffs spawn",
		}},
		{Name: "first_river_spawn", Offset: 180, Category: CategoryObjective, BuffDuration: 90, Messages: []string{
			"First river buffs spawning now",
		}},
		{Name: "fangtooth_spawn", Offset: 300, Category: CategoryObjective, RespawnTime: 300, RespawnWindow: 30, Messages: []string{
			"Fangtooth is now online",
			"Fangtooth is up, set up for it",
		}},
		{Name: "river_respawn", Offset: 320, Category: CategoryBuff, Messages: []string{
			"New river buffs spawning soon",
		}},

		// mid game (5:00 - 20:00)
		{Name: "vision_control", Offset: 400, Category: CategoryReminder, Messages: []string{
			"Support: Time to upgrade wards for better vision",
		}},
		{Name: "mini_prime", Offset: 420, Category: CategoryObjective, RespawnTime: 300, RespawnWindow: 30, Messages: []string{
			"Mini Prime is available, prepare for objective",
		}},
		{Name: "jungle_level_check", Offset: 480, Category: CategoryFarm, Messages: []string{
			"Jungler should be approaching level 6",
		}},
		{Name: "lane_pressure", Offset: 600, Category: CategoryObjective, Messages: []string{
			"Apply pressure for tower damage",
		}},
		{Name: "carry_farm_check", Offset: 600, Category: CategoryFarm, Messages: []string{
			"Carry, maintain farm priority",
		}},
		{Name: "second_fang", Offset: 630, Category: CategoryObjective, Messages: []string{
			"Time to stack Fangtooth buffs",
		}},
		{Name: "solo_lane_power", Offset: 720, Category: CategoryObjective, Messages: []string{
			"Solo lanes hitting level 9 power spike",
		}},
		{Name: "tower_status", Offset: 840, Category: CategoryObjective, Messages: []string{
			"Check outer towers status, rotate if needed",
		}},
		{Name: "orb_reminder", Offset: 840, Category: CategoryObjective, Messages: []string{
			"Mini Orb expiring soon",
		}},
		{Name: "midgame_ward", Offset: 900, Category: CategoryReminder, Messages: []string{
			"Half way mark, maintain map control",
		}},
		{Name: "wave_management", Offset: 1020, Category: CategoryFarm, Messages: []string{
			"Push waves before taking objectives",
		}},

		// late game (20:00+)
		{Name: "orb_prime_spawn", Offset: 1140, Category: CategoryObjective, RespawnTime: 420, RespawnWindow: 45, Messages: []string{
			"Prepare for Orb Prime soon, win vision",
			"Orb Prime approaching, control the pit",
		}},
		{Name: "empowered_river", Offset: 1260, Category: CategoryReminder, Messages: []string{
			"River buffs now provide empowered effects",
		}},
		{Name: "late_game_start", Offset: 1500, Category: CategoryObjective, Messages: []string{
			"Late game phase, focus on inhibitors",
		}},
		{Name: "victory_condition", Offset: 1800, Category: CategoryReminder, Messages: []string{
			"Orb Prime is crucial for victory, no solo deaths",
		}},
		{Name: "deep_vision", Offset: 1980, Category: CategoryObjective, Messages: []string{
			"Maintain deep vision control",
		}},
		{Name: "critical_phase", Offset: 2100, Category: CategoryReminder, Messages: []string{
			"Critical phase, play carefully, keep vision",
		}},
		{Name: "decisive_fight", Offset: 2280, Category: CategoryReminder, Messages: []string{
			"Next fight could decide the game",
		}},
		{Name: "final_push", Offset: 2400, Category: CategoryReminder, Messages: []string{
			"Secure objectives and end the game",
		}},
	}

	return NewTable(mode, entries)
}
