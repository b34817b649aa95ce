package sqlite

import (
	"context"
	"database/sql"

	"lg/calorie-tracker-api/internal/model"
	"lg/calorie-tracker-api/internal/nutrition"
)

const userColumns = `id, username, email, auth_token, password, created_at`

const profileColumns = `user_id, weight_kg, height_cm, date_of_birth, sex, activity_level, goal_type, units,
	onboarding_complete, bmr, tdee, bmi, bmi_category, calorie_goal, protein_goal_g, carb_goal_g,
	fat_goal_g, water_goal_ml, updated_at`

func scanUser(r rowScanner) (model.User, error) {
	var u model.User
	var created int64
	if err := r.Scan(&u.ID, &u.Username, &u.Email, &u.AuthToken, &u.Password, &created); err != nil {
		return model.User{}, dbError(err)
	}
	u.CreatedAt = fromMillis(created)
	return u, nil
}

func scanProfile(r rowScanner) (model.UserProfile, error) {
	var p model.UserProfile
	var weight, height, bmr, tdee, bmi, goal, protein, carbs, fat, water sql.NullFloat64
	var dob, sex, category sql.NullString
	var updated int64
	err := r.Scan(&p.UserID, &weight, &height, &dob, &sex, &p.ActivityLevel, &p.GoalType, &p.Units,
		&p.Onboarded, &bmr, &tdee, &bmi, &category, &goal, &protein, &carbs, &fat, &water, &updated)
	if err != nil {
		return model.UserProfile{}, dbError(err)
	}
	p.WeightKG, p.HeightCM = nullFloat(weight), nullFloat(height)
	if dob.Valid {
		d, err := model.ParseDate(dob.String)
		if err != nil {
			return model.UserProfile{}, err
		}
		p.DateOfBirth = &d
	}
	if sex.Valid {
		v := nutrition.Sex(sex.String)
		p.Sex = &v
	}
	if category.Valid {
		v := nutrition.BMICategory(category.String)
		p.BMICategory = &v
	}
	p.BMR, p.TDEE, p.BMI = nullFloat(bmr), nullFloat(tdee), nullFloat(bmi)
	p.CalorieGoal, p.ProteinGoalG, p.CarbGoalG = nullFloat(goal), nullFloat(protein), nullFloat(carbs)
	p.FatGoalG, p.WaterGoalML = nullFloat(fat), nullFloat(water)
	p.UpdatedAt = fromMillis(updated)
	return p, nil
}

// CreateUser inserts the user and its default profile row together.
func (s *Store) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	var created model.User
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		created, err = scanUser(tx.QueryRowContext(ctx,
			`INSERT INTO users (username, email, password, auth_token, created_at)
			 VALUES (?, ?, ?, ?, ?) RETURNING `+userColumns,
			u.Username, u.Email, u.Password, u.AuthToken, millis(s.now())))
		if err != nil {
			return err
		}
		_, err = s.upsertProfile(ctx, tx, model.DefaultProfile(created.ID))
		return err
	})
	return created, err
}

func (s *Store) UserByUsername(ctx context.Context, username string) (model.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE username = ?", username))
}

func (s *Store) UserIDByToken(ctx context.Context, token string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, "SELECT id FROM users WHERE auth_token = ?", token).Scan(&id)
	return id, dbError(err)
}

func (s *Store) GetProfile(ctx context.Context, userID int64) (model.UserProfile, error) {
	return getProfile(ctx, s.db, userID)
}

func getProfile(ctx context.Context, q querier, userID int64) (model.UserProfile, error) {
	return scanProfile(q.QueryRowContext(ctx, "SELECT "+profileColumns+" FROM user_profiles WHERE user_id = ?", userID))
}

// SaveProfile writes every column, derived ones included. Callers recompute
// the derived fields before saving.
func (s *Store) SaveProfile(ctx context.Context, p model.UserProfile) (model.UserProfile, error) {
	return s.upsertProfile(ctx, s.db, p)
}

func (s *Store) upsertProfile(ctx context.Context, q querier, p model.UserProfile) (model.UserProfile, error) {
	var sex, category any
	if p.Sex != nil {
		sex = string(*p.Sex)
	}
	if p.BMICategory != nil {
		category = string(*p.BMICategory)
	}
	return scanProfile(q.QueryRowContext(ctx,
		`INSERT INTO user_profiles (user_id, weight_kg, height_cm, date_of_birth, sex, activity_level,
			goal_type, units, onboarding_complete, bmr, tdee, bmi, bmi_category, calorie_goal,
			protein_goal_g, carb_goal_g, fat_goal_g, water_goal_ml, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET
			weight_kg = excluded.weight_kg,
			height_cm = excluded.height_cm,
			date_of_birth = excluded.date_of_birth,
			sex = excluded.sex,
			activity_level = excluded.activity_level,
			goal_type = excluded.goal_type,
			units = excluded.units,
			onboarding_complete = excluded.onboarding_complete,
			bmr = excluded.bmr,
			tdee = excluded.tdee,
			bmi = excluded.bmi,
			bmi_category = excluded.bmi_category,
			calorie_goal = excluded.calorie_goal,
			protein_goal_g = excluded.protein_goal_g,
			carb_goal_g = excluded.carb_goal_g,
			fat_goal_g = excluded.fat_goal_g,
			water_goal_ml = excluded.water_goal_ml,
			updated_at = excluded.updated_at
		 RETURNING `+profileColumns,
		p.UserID, p.WeightKG, p.HeightCM, p.DateOfBirth, sex, string(p.ActivityLevel),
		string(p.GoalType), string(p.Units), p.Onboarded, p.BMR, p.TDEE, p.BMI, category,
		p.CalorieGoal, p.ProteinGoalG, p.CarbGoalG, p.FatGoalG, p.WaterGoalML, millis(s.now())))
}
