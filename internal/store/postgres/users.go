package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"lg/calorie-tracker-api/internal/model"
)

const userColumns = `id, username, email, auth_token, password, created_at`

const profileColumns = `user_id, weight_kg, height_cm, date_of_birth, sex, activity_level, goal_type, units,
	onboarding_complete, bmr, tdee, bmi, bmi_category, calorie_goal, protein_goal_g, carb_goal_g,
	fat_goal_g, water_goal_ml, updated_at`

// CreateUser inserts the user and its default profile row together.
func (s *Store) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	var created model.User
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		created, err = queryOne[model.User](ctx, tx,
			`INSERT INTO users (username, email, password, auth_token)
			 VALUES (@username, @email, @password, @authToken)
			 RETURNING `+userColumns,
			pgx.NamedArgs{"username": u.Username, "email": u.Email, "password": u.Password, "authToken": u.AuthToken})
		if err != nil {
			return err
		}
		_, err = upsertProfile(ctx, tx, model.DefaultProfile(created.ID))
		return err
	})
	return created, err
}

func (s *Store) UserByUsername(ctx context.Context, username string) (model.User, error) {
	return queryOne[model.User](ctx, s.pool,
		"SELECT "+userColumns+" FROM users WHERE username = @username",
		pgx.NamedArgs{"username": username})
}

func (s *Store) UserIDByToken(ctx context.Context, token string) (int64, error) {
	u, err := queryOne[model.User](ctx, s.pool,
		"SELECT "+userColumns+" FROM users WHERE auth_token = @token",
		pgx.NamedArgs{"token": token})
	return u.ID, err
}

func (s *Store) GetProfile(ctx context.Context, userID int64) (model.UserProfile, error) {
	return queryOne[model.UserProfile](ctx, s.pool,
		"SELECT "+profileColumns+" FROM user_profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
}

// SaveProfile writes every column, derived ones included. Callers recompute
// the derived fields before saving.
func (s *Store) SaveProfile(ctx context.Context, p model.UserProfile) (model.UserProfile, error) {
	return upsertProfile(ctx, s.pool, p)
}

func upsertProfile(ctx context.Context, q querier, p model.UserProfile) (model.UserProfile, error) {
	var dob *string
	if p.DateOfBirth != nil {
		v := p.DateOfBirth.String()
		dob = &v
	}
	var sex, category *string
	if p.Sex != nil {
		v := string(*p.Sex)
		sex = &v
	}
	if p.BMICategory != nil {
		v := string(*p.BMICategory)
		category = &v
	}
	return queryOne[model.UserProfile](ctx, q,
		`INSERT INTO user_profiles (user_id, weight_kg, height_cm, date_of_birth, sex, activity_level,
			goal_type, units, onboarding_complete, bmr, tdee, bmi, bmi_category, calorie_goal,
			protein_goal_g, carb_goal_g, fat_goal_g, water_goal_ml)
		 VALUES (@userID, @weightKG, @heightCM, @dob::date, @sex, @activity, @goal, @units, @onboarded,
			@bmr, @tdee, @bmi, @bmiCategory, @calorieGoal, @protein, @carbs, @fat, @water)
		 ON CONFLICT (user_id) DO UPDATE SET
			weight_kg = EXCLUDED.weight_kg,
			height_cm = EXCLUDED.height_cm,
			date_of_birth = EXCLUDED.date_of_birth,
			sex = EXCLUDED.sex,
			activity_level = EXCLUDED.activity_level,
			goal_type = EXCLUDED.goal_type,
			units = EXCLUDED.units,
			onboarding_complete = EXCLUDED.onboarding_complete,
			bmr = EXCLUDED.bmr,
			tdee = EXCLUDED.tdee,
			bmi = EXCLUDED.bmi,
			bmi_category = EXCLUDED.bmi_category,
			calorie_goal = EXCLUDED.calorie_goal,
			protein_goal_g = EXCLUDED.protein_goal_g,
			carb_goal_g = EXCLUDED.carb_goal_g,
			fat_goal_g = EXCLUDED.fat_goal_g,
			water_goal_ml = EXCLUDED.water_goal_ml,
			updated_at = now()
		 RETURNING `+profileColumns,
		pgx.NamedArgs{
			"userID": p.UserID, "weightKG": p.WeightKG, "heightCM": p.HeightCM, "dob": dob, "sex": sex,
			"activity": string(p.ActivityLevel), "goal": string(p.GoalType), "units": string(p.Units),
			"onboarded": p.Onboarded, "bmr": p.BMR, "tdee": p.TDEE, "bmi": p.BMI, "bmiCategory": category,
			"calorieGoal": p.CalorieGoal, "protein": p.ProteinGoalG, "carbs": p.CarbGoalG,
			"fat": p.FatGoalG, "water": p.WaterGoalML,
		})
}
